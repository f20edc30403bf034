package model

// AppStatus is the lifecycle state of an installed App.
type AppStatus string

const (
	AppStatusNotInstalled AppStatus = "NotInstalled"
	AppStatusInstalling   AppStatus = "Installing"
	AppStatusInstalled    AppStatus = "Installed"
	AppStatusFailed       AppStatus = "Failed"
)

// App is the installable unit a Manifest describes and Instances realize.
type App struct {
	Key          AppKey
	Status       AppStatus
	DeploymentID string
}
