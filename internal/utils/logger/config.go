// internal/utils/logger/config.go
package logger

type Config struct {
	LogFile     string
	MaxSize     int  // мегабайты
	MaxAge      int  // дни
	MaxBackups  int  // количество файлов
	Compress    bool // сжимать ротированные файлы
	Development bool
	// Quiet отключает вывод в stdout (например, под TUI)
	Quiet bool
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "logs/jinvault.log",
		MaxSize:     50,
		MaxAge:      14,
		MaxBackups:  5,
		Compress:    true,
		Development: false,
	}
}
