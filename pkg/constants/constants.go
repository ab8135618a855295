package constants

const (
	AppName      = "studio"
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "LEADS"
)
