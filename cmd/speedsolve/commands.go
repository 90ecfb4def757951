package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Black-And-White-Club/speedsolve/app/eventbus"
	attemptservice "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application"
	attemptevents "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/events"
	puzzletypedb "github.com/Black-And-White-Club/speedsolve/app/modules/puzzletype/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/speedsolve/app/modules/user/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/hako/durafmt"
	"github.com/urfave/cli/v2"
)

func elapsed(start time.Time) string {
	return durafmt.Parse(time.Since(start)).LimitFirstN(2).String()
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert the standard puzzle types and optional demo data",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "user", Usage: "user name to create (repeatable)"},
			&cli.IntFlag{Name: "demo-users", Usage: "number of generated users with random attempts"},
			&cli.IntFlag{Name: "demo-attempts", Value: 120, Usage: "attempts per generated user on 333"},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "random seed for demo data"},
		},
		Action: func(c *cli.Context) error {
			start := time.Now()
			e, err := openEnv(c)
			if err != nil {
				return err
			}
			defer e.Close()
			ctx := c.Context

			for _, pt := range puzzletypedb.Standard {
				if err := e.puzzles.Upsert(ctx, e.db, &pt); err != nil {
					return err
				}
			}
			fmt.Printf("Seeded %d puzzle types\n", len(puzzletypedb.Standard))

			for _, name := range c.StringSlice("user") {
				u := &userdb.User{Name: name}
				if err := e.users.Upsert(ctx, e.db, u); err != nil {
					return err
				}
				fmt.Printf("User %s: %s\n", u.Name, u.ID)
			}

			if n := c.Int("demo-users"); n > 0 {
				count, err := seedDemo(c, e, n, c.Int("demo-attempts"), c.Uint64("seed"))
				if err != nil {
					return err
				}
				fmt.Printf("Generated %d attempts for %d users\n", count, n)
			}

			fmt.Printf("Done in %s\n", elapsed(start))
			return nil
		},
	}
}

// seedDemo creates users with plausible 3x3 sessions: times drift around a
// per-user mean with occasional DNFs and +2s.
func seedDemo(c *cli.Context, e *env, users, attempts int, seed uint64) (int, error) {
	ctx := c.Context
	faker := gofakeit.New(seed)

	pt, err := e.puzzles.GetBySlug(ctx, e.db, "333")
	if err != nil {
		return 0, fmt.Errorf("puzzle type 333 missing: %w", err)
	}

	total := 0
	now := time.Now().UTC()
	for range users {
		u := &userdb.User{Name: faker.Username()}
		if err := e.users.Upsert(ctx, e.db, u); err != nil {
			return total, err
		}

		mean := faker.Number(8000, 25000)
		batch := make([]attemptservice.NewAttempt, attempts)
		for i := range batch {
			performed := now.Add(-time.Duration(attempts-i) * time.Minute)
			a := attemptservice.NewAttempt{
				UserID:       u.ID,
				PuzzleTypeID: pt.ID,
				Milliseconds: mean + faker.Number(-mean/5, mean/5),
				PerformedAt:  &performed,
			}
			switch roll := faker.Number(1, 100); {
			case roll <= 3:
				a.DNF = true
			case roll <= 8:
				a.Penalty = 2000
				a.Milliseconds += 2000
			}
			batch[i] = a
		}

		n, err := e.service.BatchCreateAttempts(ctx, batch)
		if err != nil {
			return total, fmt.Errorf("seed attempts for %s: %w", u.Name, err)
		}
		total += n
	}
	return total, nil
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "import attempts from a .csv or .xlsx file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true, Usage: "user id or name"},
			&cli.StringFlag{Name: "puzzle", Required: true, Usage: "puzzle type id or slug"},
			&cli.PathFlag{Name: "file", Required: true, Usage: "file to import"},
		},
		Action: func(c *cli.Context) error {
			start := time.Now()
			e, err := openEnv(c)
			if err != nil {
				return err
			}
			defer e.Close()
			ctx := c.Context

			u, err := e.resolveUser(ctx, c.String("user"))
			if err != nil {
				return fmt.Errorf("user %q: %w", c.String("user"), err)
			}
			pt, err := e.resolvePuzzle(ctx, c.String("puzzle"))
			if err != nil {
				return fmt.Errorf("puzzle type %q: %w", c.String("puzzle"), err)
			}

			path := c.Path("file")
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := e.service.ImportAttempts(ctx, u.ID, pt.ID, filepath.Base(path), f)
			if err != nil {
				return err
			}

			bests, err := e.service.CurrentBests(ctx, u.ID, pt.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d attempts for %s on %s in %s\n", n, u.Name, pt.Slug, elapsed(start))
			printBests(bests)
			return nil
		},
	}
}

func rebuildCommand() *cli.Command {
	return &cli.Command{
		Name:  "rebuild",
		Usage: "rebuild record ledgers",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "rebuild every pair"},
			&cli.StringFlag{Name: "user", Usage: "user id or name"},
			&cli.StringFlag{Name: "puzzle", Usage: "puzzle type id or slug"},
		},
		Action: func(c *cli.Context) error {
			all := c.Bool("all")
			if all == (c.IsSet("user") || c.IsSet("puzzle")) {
				return errors.New("pass either --all or both --user and --puzzle")
			}

			start := time.Now()
			e, err := openEnv(c)
			if err != nil {
				return err
			}
			defer e.Close()
			ctx := c.Context

			if all {
				summary, err := e.service.RebuildAll(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Rebuilt %d ledgers (%d failed) in %s\n", summary.Pairs, summary.Failed,
					durafmt.Parse(summary.Duration).LimitFirstN(2).String())
				if summary.Failed > 0 {
					return fmt.Errorf("%d ledgers failed to rebuild", summary.Failed)
				}
				return nil
			}

			u, err := e.resolveUser(ctx, c.String("user"))
			if err != nil {
				return fmt.Errorf("user %q: %w", c.String("user"), err)
			}
			pt, err := e.resolvePuzzle(ctx, c.String("puzzle"))
			if err != nil {
				return fmt.Errorf("puzzle type %q: %w", c.String("puzzle"), err)
			}
			bests, err := e.service.RebuildLedger(ctx, u.ID, pt.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Rebuilt ledger for %s on %s in %s\n", u.Name, pt.Slug, elapsed(start))
			printBests(bests)
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "print attempts as they are created (requires NATS)",
		Action: func(c *cli.Context) error {
			e, err := openEnv(c)
			if err != nil {
				return err
			}
			defer e.Close()
			if !e.cfg.NATS.Enabled {
				return errors.New("watch needs nats.enabled; in-process events are not visible to other processes")
			}
			return watch(c, e.bus)
		},
	}
}

func watch(c *cli.Context, bus eventbus.EventBus) error {
	messages, err := bus.Subscribe(c.Context, attemptevents.AttemptCreatedV1)
	if err != nil {
		return err
	}
	fmt.Println("Watching for attempts, Ctrl-C to stop")
	for {
		select {
		case <-c.Context.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			msg.Ack()
			fmt.Println(string(msg.Payload))
		}
	}
}
