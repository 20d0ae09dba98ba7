package taskengine

const (
	NoActiveAccountError  = "no active account available"
	ChainMismatchError    = "wrong network"
	ChainUnavailableError = "cannot determine chain id"

	PortNotConfiguredError = "port is not configured"

	EngineBusyError = "a workflow run is already in progress"

	StorageUnavailableError = "storage is not ready"
	StorageWriteError       = "cannot write to storage"
	RunNotFoundError        = "run not found"

	RunStorageCorruptedError = "run data storage is corrupted"
)
