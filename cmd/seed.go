package cmd

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	appctx "github.com/canteen-pay/meal-go/context"
	"github.com/canteen-pay/meal-go/datastore"
	"github.com/canteen-pay/meal-go/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// SeedCmd loads a demo terminal, employee and card for local development
var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "insert demo data for local development",
	Run:   Perform("seed", RunSeed),
}

func init() {
	RootCmd.AddCommand(SeedCmd)

	flagBuilder := NewFlagBuilder(SeedCmd)

	flagBuilder.String("terminal-token", "dev-terminal-token",
		"the plaintext token the demo terminal authenticates with").
		Bind("terminal-token").
		Env("TERMINAL_TOKEN")
}

// RunSeed is the runner for the seed command
func RunSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	logger, err := appctx.GetLogger(ctx)
	if err != nil {
		_, logger = logging.SetupLogger(ctx)
	}

	pg, err := datastore.NewPostgres(viper.GetString("datastore"), true)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	db := pg.RawDB()

	terminalToken := viper.GetString("terminal-token")
	hash := sha256.Sum256([]byte(terminalToken))
	tokenHash := hex.EncodeToString(hash[:])

	_, err = db.ExecContext(ctx,
		`insert into terminals (name, api_token_hash)
		 values ($1, $2)
		 on conflict (api_token_hash) do nothing`,
		"Terminal #1", tokenHash)
	if err != nil {
		return err
	}

	var employeeID int64
	err = db.GetContext(ctx, &employeeID,
		`insert into employees (personnel_no, full_name, kind, monthly_limit_cents)
		 values ($1, $2, $3, $4)
		 on conflict (personnel_no) do update set full_name = excluded.full_name
		 returning id`,
		"0001", "Иванов Иван", "WORKER", 200000)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`insert into cards (uid, employee_id)
		 values ($1, $2)
		 on conflict (uid) do nothing`,
		"DEMO-CARD-UID-1", employeeID)
	if err != nil {
		return err
	}

	logger.Info().
		Int64("employee_id", employeeID).
		Str("card_uid", "DEMO-CARD-UID-1").
		Str("terminal_token", terminalToken).
		Msg("seeded demo data")
	fmt.Printf("terminal token: %s\ncard uid: DEMO-CARD-UID-1\nemployee id: %d\n",
		terminalToken, employeeID)
	return nil
}
