package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/transfermarket-backend/internal/app"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var teams idList
	var verifyOnly bool
	flag.Var(&teams, "team", "team id to verify (repeatable, default all)")
	flag.BoolVar(&verifyOnly, "verify", false, "compare folded balances with the read model without rebuilding")
	flag.Parse()

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	dbc := dbctx.Context{Ctx: ctx}
	proj := application.Services.Projector

	if !verifyOnly {
		report, err := proj.Rebuild(dbc)
		if err != nil {
			fmt.Printf("rebuild: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("rebuilt teams=%d transfers=%d\n", report.Teams, report.Transfers)
	}

	var ids []uuid.UUID
	if len(teams) > 0 {
		for _, s := range teams {
			id, err := uuid.Parse(s)
			if err != nil || id == uuid.Nil {
				fmt.Printf("skip invalid team id %q\n", s)
				continue
			}
			ids = append(ids, id)
		}
	} else {
		ids, err = application.Repos.Team.ListIDs(dbc)
		if err != nil {
			fmt.Printf("list teams: %v\n", err)
			os.Exit(1)
		}
	}

	mismatched := 0
	for _, id := range ids {
		check, err := proj.VerifyTeamBalance(dbc, id)
		if err != nil {
			fmt.Printf("verify team=%s: %v\n", id, err)
			mismatched++
			continue
		}
		if !check.Match() {
			mismatched++
			fmt.Printf("mismatch team=%s folded=%s read_model=%s version=%d\n", id, check.Folded, check.ReadModel, check.Version)
		}
	}
	fmt.Printf("verified=%d mismatched=%d\n", len(ids), mismatched)
	if mismatched > 0 {
		os.Exit(2)
	}
}
