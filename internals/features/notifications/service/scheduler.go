package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// StartRetryScheduler menjadwalkan flush antrian retry notifikasi.
func StartRetryScheduler(d *Dispatcher, spec string) (*cron.Cron, error) {
	if spec == "" {
		spec = "@every 1m"
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() {
		if d.Pending() == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n := d.FlushPending(ctx)
		log.Printf("[CRON] notification retry flushed=%d remaining=%d", n, d.Pending())
	}); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
