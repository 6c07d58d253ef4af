// Package timingpoint is the background ingestion worker: it accepts raw
// finish-line observations over TCP, decodes a line-delimited wire format,
// and funnels every observation through the same ingestion path the HTTP
// surface uses.
package timingpoint

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"skirace/pkg/domain"
)

// Ingester is the subset of the orchestrator a Listener needs. Time-events
// arriving off the wire and corrections arriving over HTTP converge on the
// same method.
type Ingester interface {
	IngestTimeEvent(ctx context.Context, ev *domain.TimeEvent, userID string) (*domain.TimeEvent, error)
}

// Listener accepts connections on addr and reads one observation per line.
type Listener struct {
	addr     string
	ingester Ingester

	ln net.Listener
	wg sync.WaitGroup
}

func New(addr string, ingester Ingester) *Listener {
	return &Listener{addr: addr, ingester: ingester}
}

// Serve listens until Stop closes the listener. It returns nil on a clean
// shutdown and a non-nil error only if the socket could not be opened.
func (l *Listener) Serve() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("timingpoint: listen on %s: %w", l.addr, err)
	}
	l.ln = ln

	for {
		conn, err := ln.Accept()
		if err != nil {
			return nil
		}
		l.wg.Add(1)
		go l.handleConn(conn)
	}
}

// Stop closes the listener and waits for in-flight connections to drain.
func (l *Listener) Stop() {
	if l.ln != nil {
		_ = l.ln.Close()
	}
	l.wg.Wait()
}

func (l *Listener) handleConn(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ev, err := parseObservation(line)
		if err != nil {
			log.Err(err).Str("line", line).Msg("timingpoint: malformed observation")
			continue
		}
		if _, err := l.ingester.IngestTimeEvent(context.Background(), ev, domain.SystemUser); err != nil {
			log.Err(err).Str("race_id", ev.RaceID).Int("bib", ev.Bib).Msg("timingpoint: ingest failed")
		}
	}
	if err := scanner.Err(); err != nil {
		log.Err(err).Msg("timingpoint: connection read error")
	}
}

// parseObservation decodes one wire line: "race_id,bib,timing_point,timestamp"
// where timestamp is RFC3339 with nanosecond precision.
func parseObservation(line string) (*domain.TimeEvent, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 4 {
		return nil, fmt.Errorf("timingpoint: expected 4 comma-separated fields, got %d", len(fields))
	}

	raceID := strings.TrimSpace(fields[0])
	if raceID == "" {
		return nil, fmt.Errorf("timingpoint: race_id is required")
	}

	bib, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return nil, fmt.Errorf("timingpoint: invalid bib %q: %w", fields[1], err)
	}

	timingPoint := strings.TrimSpace(fields[2])
	if timingPoint == "" {
		return nil, fmt.Errorf("timingpoint: timing_point is required")
	}

	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(fields[3]))
	if err != nil {
		return nil, fmt.Errorf("timingpoint: invalid timestamp %q: %w", fields[3], err)
	}

	return &domain.TimeEvent{
		RaceID:           raceID,
		Bib:              bib,
		TimingPoint:      timingPoint,
		RegistrationTime: ts,
	}, nil
}
