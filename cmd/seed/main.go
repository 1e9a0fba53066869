package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/dentaldesk/frontdesk/internal/allocation"
	"github.com/dentaldesk/frontdesk/internal/availability"
	"github.com/dentaldesk/frontdesk/internal/config"
	"github.com/dentaldesk/frontdesk/internal/db"
	"github.com/dentaldesk/frontdesk/internal/roster"
	"github.com/dentaldesk/frontdesk/internal/schedule"
	"github.com/dentaldesk/frontdesk/internal/store"
	"github.com/dentaldesk/frontdesk/internal/timeofday"
)

var procedures = []string{
	"RCT",
	"CROWN PREP",
	"EXTRACTION",
	"SCALING",
	"FILLING",
	"IMPLANT",
	"DENTURE TRIAL",
	"ORTHO ADJUSTMENT",
	"BRIDGE CEMENTATION",
	"CONSULTATION",
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Str("service", "seed").Logger()
	log.Info().Msg("seed starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var st store.Store
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("connect postgres")
		}
		defer pool.Close()

		if _, err := pool.Exec(ctx, store.Schema()); err != nil {
			log.Fatal().Err(err).Msg("apply schema")
		}
		log.Info().Msg("schema applied")
		st = store.NewPgStore(pool)
	case config.StoreFile:
		st = store.NewFileStore(cfg.SchedulePath, log)
	case config.StoreMemory:
		log.Fatal().Msg("seeding the memory store has no effect; use file or postgres")
	}

	gofakeit.Seed(time.Now().UnixNano())

	ros := roster.Default()
	tbl := demoDay(ros, 12)
	log.Info().Int("rows", len(tbl)).Msg("demo day generated")

	if err := st.Save(ctx, tbl, map[string]string{}); err != nil {
		log.Fatal().Err(err).Msg("save schedule")
	}
	log.Info().Msg("seed complete")
}

// demoDay builds a plausible day of appointments: staggered half-hour to
// two-hour windows between 09:00 and 19:00, real doctors, and assistants
// assigned by the same engine the dashboard uses.
func demoDay(ros *roster.Roster, count int) schedule.Table {
	doctors := ros.AllDoctors()
	now := time.Now()

	tbl := make(schedule.Table, 0, count+1)
	for i := 0; i < count; i++ {
		startMin := 9*60 + gofakeit.Number(0, 19)*30
		durMin := gofakeit.Number(1, 4) * 30

		row := schedule.NewRow()
		row.PatientID = fmt.Sprintf("P%04d", gofakeit.Number(1, 9999))
		row.PatientName = gofakeit.FirstName()
		row.InTime = timeofday.FromMinutes(startMin).String()
		row.OutTime = timeofday.FromMinutes(startMin + durMin).String()
		row.Procedure = procedures[gofakeit.Number(0, len(procedures)-1)]
		row.Doctor = doctors[gofakeit.Number(0, len(doctors)-1)]
		row.Chair = fmt.Sprintf("OP-%d", gofakeit.Number(1, 6))
		row.CasePaper = gofakeit.RandomString([]string{"YES", "NO"})
		row.Suction = gofakeit.Bool()
		tbl = append(tbl, row)
	}
	tbl = tbl.AutoAppend()

	res := availability.NewResolver(ros)
	eng := allocation.NewEngine(ros, res)
	for i := range tbl {
		eng.AutoFillRow(tbl, tbl[i].ID, nil, true, now)
	}
	return tbl
}
