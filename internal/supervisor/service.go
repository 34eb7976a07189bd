// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package supervisor

import "context"

// FuncService adapts a plain `func(ctx) error` background loop into a
// suture.Service, the same translation the teacher applies to
// *http.Server in services/http_service.go. Every cleanup sweeper,
// poller, and watchdog in this sidecar is one of these.
type FuncService struct {
	name string
	run  func(ctx context.Context) error
}

// NewFuncService wraps run as a named, supervisable service. run must
// return promptly (or return nil) when ctx is cancelled; returning a
// non-nil error causes suture to restart it per the tree's backoff policy.
func NewFuncService(name string, run func(ctx context.Context) error) *FuncService {
	return &FuncService{name: name, run: run}
}

func (s *FuncService) Serve(ctx context.Context) error {
	return s.run(ctx)
}

func (s *FuncService) String() string {
	return s.name
}
