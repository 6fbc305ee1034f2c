package api

type ServerConfig struct {
	DB    DBConfig
	Redis RedisConfig
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string

	// AutoMigrate 啟動時自動建立資料表，開發環境用
	AutoMigrate bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	StreamKeys RedisStreamKeys
}

type RedisStreamKeys struct {
	Notification string
}
