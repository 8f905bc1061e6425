package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// progressPrinter renders a single-line live status while provider checks
// are in flight. Observe is safe to call from multiple goroutines.
type progressPrinter struct {
	total    int
	target   string
	mu       sync.Mutex
	settled  int
	flagged  int
	last     string
	elapsed  time.Duration
	updates  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newProgressPrinter(total int, target string) *progressPrinter {
	if total <= 0 {
		total = 1
	}
	if len(target) > 40 {
		target = target[:37] + "..."
	}
	return &progressPrinter{
		total:   total,
		target:  target,
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (p *progressPrinter) Start() {
	go p.loop()
}

// Observe records one settled check. clean reports whether every result
// the check produced passed.
func (p *progressPrinter) Observe(name string, clean bool, elapsed time.Duration) {
	p.mu.Lock()
	p.settled++
	if !clean {
		p.flagged++
	}
	p.last = name
	p.elapsed += elapsed
	p.mu.Unlock()

	select {
	case p.updates <- struct{}{}:
	default:
	}
}

// Stop ends the render loop and clears the line so the result table can
// print from column zero.
func (p *progressPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
	fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", 80))
}

func (p *progressPrinter) loop() {
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.updates:
			p.print()
		case <-ticker.C:
			p.print()
		case <-p.done:
			return
		}
	}
}

func (p *progressPrinter) print() {
	p.mu.Lock()
	settled := p.settled
	flagged := p.flagged
	last := p.last
	elapsed := p.elapsed
	p.mu.Unlock()

	total := p.total
	if settled > total {
		total = settled
	}

	percent := (float64(settled) / float64(total)) * 100
	avg := 0.0
	if settled > 0 {
		avg = elapsed.Seconds() / float64(settled)
	}

	line := fmt.Sprintf("\rScanning %s: %d/%d checks (%.0f%%) flagged:%d avg:%.2fs",
		p.target, settled, total, percent, flagged, avg)
	if last != "" {
		line += " last:" + last
	}
	fmt.Fprintf(os.Stdout, "%s", line)
}
