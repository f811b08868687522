package config

import "os"

func IsDebug() bool {
	return os.Getenv("DUSHA_DEBUG") == "1"
}
