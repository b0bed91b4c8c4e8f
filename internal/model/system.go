package model

// VersionInfo contains version and schema information for the application.
type VersionInfo struct {
	AppVersion string `json:"app_version"`
	DbVersion  int64  `json:"db_version"`
	DbDriver   string `json:"db_driver"`
}
