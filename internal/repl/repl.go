// Package repl runs the interactive coverage menu.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/coverage-stats/internal/core/model"
	"github.com/mohammed-shakir/coverage-stats/internal/logger"
	"github.com/mohammed-shakir/coverage-stats/internal/present"
	"github.com/mohammed-shakir/coverage-stats/internal/service"
)

const menu = `1. Display Global Statistics
2. Display Base Station Statistics
3. Check Coverage
4. Exit
`

type Session struct {
	svc *service.Service
	log *slog.Logger
	in  *bufio.Scanner
	out io.Writer
}

func New(svc *service.Service, log *slog.Logger, in io.Reader, out io.Writer) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{svc: svc, log: log, in: bufio.NewScanner(in), out: out}
}

// Run loops until the user picks Exit, input ends or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	ctx = logger.WithComponent(ctx, "repl")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if _, err := io.WriteString(s.out, menu); err != nil {
			return err
		}
		choice, ok := s.prompt("Enter your choice: ")
		if !ok {
			return s.in.Err()
		}
		var err error
		switch choice {
		case "1":
			err = s.global(ctx)
		case "2":
			err = s.station(ctx)
		case "3":
			err = s.check(ctx)
		case "4":
			return nil
		default:
			err = s.println("Invalid choice. Please try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) global(ctx context.Context) error {
	st, err := s.svc.GlobalStatistics(ctx)
	if err != nil {
		return s.println("Error: " + err.Error())
	}
	return present.GlobalStats(s.out, st)
}

func (s *Session) station(ctx context.Context) error {
	sub, ok := s.prompt("Enter sub-option (2.1 for random station, 2.2 to choose by ID): ")
	if !ok {
		return nil
	}
	var (
		id      *model.ID
		missing string
	)
	switch sub {
	case "2.1":
		missing = present.MsgNoStations
	case "2.2":
		raw, ok := s.prompt("Enter base station ID: ")
		if !ok {
			return nil
		}
		v := model.ParseID(raw)
		id = &v
		missing = present.MsgStationNotFound
	default:
		return s.println("Invalid sub-option.")
	}

	st, found, err := s.svc.StationStatistics(ctx, id)
	switch {
	case !found:
		return s.println(missing)
	case err != nil:
		return s.println("Error: " + err.Error())
	}
	return present.StationStats(s.out, st)
}

func (s *Session) check(ctx context.Context) error {
	lat, ok, err := s.promptFloat("Enter latitude: ")
	if !ok || err != nil {
		return err
	}
	lon, ok, err := s.promptFloat("Enter longitude: ")
	if !ok || err != nil {
		return err
	}
	ans := s.svc.CheckCoverage(ctx, lat, lon)
	s.log.DebugContext(ctx, "coverage checked", "lat", lat, "lon", lon, "covered", ans.Covered())
	return present.PointCoverage(s.out, ans)
}

// promptFloat reports ok=false on end of input or on a malformed number,
// the latter after telling the user.
func (s *Session) promptFloat(label string) (float64, bool, error) {
	raw, ok := s.prompt(label)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, s.println(fmt.Sprintf("Invalid number: %q", raw))
	}
	return v, true, nil
}

func (s *Session) prompt(label string) (string, bool) {
	if _, err := io.WriteString(s.out, label); err != nil {
		return "", false
	}
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Session) println(line string) error {
	_, err := io.WriteString(s.out, line+"\n")
	return err
}
