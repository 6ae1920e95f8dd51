package db

// Op names the command that failed, for error context.
const (
	OpDel       = "DEL"
	OpHGetAll   = "HGETALL"
	OpHSetOwned = "HSETOWNED"
	OpHCreate   = "HCREATE"
	OpHUpdate   = "HUPDATE"
	OpRPush     = "RPUSH"
	OpLRange    = "LRANGE"
	OpScan      = "SCAN"
	OpPing      = "PING"
)

// Error wraps a store failure with the command that produced it.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
