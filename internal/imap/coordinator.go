package imap

import (
	"context"
	"log"

	"github.com/PranavAK3704/OneBox/internal/config"
)

// Coordinator starts one Supervisor per configured account. Accounts with
// incomplete credentials are skipped; they never fail the process.
type Coordinator struct {
	supervisors []*Supervisor
}

// NewCoordinator builds supervisors for every complete account.
func NewCoordinator(accounts []config.Account, folder string, processor Processor, opts Options) *Coordinator {
	coordinator := &Coordinator{}

	for _, account := range accounts {
		if !account.Complete() {
			log.Printf("imap: skipping %s, missing credentials", account.ID)
			continue
		}
		coordinator.supervisors = append(coordinator.supervisors, NewSupervisor(account, folder, processor, opts))
	}

	return coordinator
}

// Start launches every supervisor on its own goroutine. Supervisors run until
// the context is canceled; they do not share any mutable state.
func (c *Coordinator) Start(ctx context.Context) {
	for _, supervisor := range c.supervisors {
		go supervisor.Run(ctx)
	}
	log.Printf("imap: started %d account supervisor(s)", len(c.supervisors))
}

// Status reports the connection state of every supervised account.
func (c *Coordinator) Status() map[string]string {
	status := make(map[string]string, len(c.supervisors))
	for _, supervisor := range c.supervisors {
		status[supervisor.AccountID()] = supervisor.State().String()
	}
	return status
}
