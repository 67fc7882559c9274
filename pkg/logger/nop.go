package logger

// Nop returns a Logger that discards everything. Used as the default in
// library components until a real logger is injected.
func Nop() Logger { return nop{} }

type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}

func (n nop) WithComponent(string) Logger { return n }
