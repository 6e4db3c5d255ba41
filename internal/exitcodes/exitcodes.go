package exitcodes

// Exit codes for the snapsweep binaries
// These codes form the operational contract with cron jobs and operators
const (
	Success = 0 // Successful run, every attempted delete succeeded
	Failure = 1 // Fatal precondition error or failed delete attempts
)
