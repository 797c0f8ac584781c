package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

const (
	KVStoreMemory = "memory"
	KVStoreRedis  = "redis"
	KVStoreMinio  = "minio"
)

const (
	SamplingRandom = "random"
	SamplingFirst  = "first"
)
