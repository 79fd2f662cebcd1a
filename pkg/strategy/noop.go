package strategy

import "context"

// NoOp covers tools whose backing service is not installed on this host at
// all, such as Redfish, which is served by the BMC. Check always passes;
// reachability is the detector's concern.
type NoOp struct {
	ToolName string
}

func (s *NoOp) Tool() string                      { return s.ToolName }
func (s *NoOp) Kind() Kind                        { return KindNone }
func (s *NoOp) Install(ctx context.Context) error { return nil }
func (s *NoOp) Remove(ctx context.Context) error  { return nil }
func (s *NoOp) Check(ctx context.Context) bool    { return true }
