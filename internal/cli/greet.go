package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/hellodb/internal/greeting"
	"github.com/vvka-141/hellodb/pkg/hellodb"
)

var greetCmd = &cobra.Command{
	Use:   "greet",
	Short: "Fetch the greeting once and print it",
	Long: `Resolve credentials, read the newest greeting and print it to stdout.

Exits 0 when a greeting (or the empty-table hint) was printed, 1 when a
credential lookup failed and 11 when the database could not be reached or
queried.`,
	Example: `  hellodb greet
  hellodb greet --env-file .env.staging -v`,
	Args: cobra.NoArgs,
	RunE: runGreet,
}

func init() {
	rootCmd.AddCommand(greetCmd)
}

func runGreet(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cmd, false)
	if err != nil {
		return err
	}
	defer closeLog()

	// Last stage before Closed tells secret failures from database failures.
	var last greeting.Stage
	track := greeting.WithStageHook(func(s greeting.Stage) {
		if s != greeting.StageClosed {
			last = s
		}
	})

	flow, err := newGreeter(commandContext(cmd), settings, logger, track)
	if err != nil {
		return err
	}

	result := flow.GetGreeting(commandContext(cmd))
	if !result.OK() {
		return &greetError{text: result.Text, stage: last}
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Text)
	return nil
}

// greetError carries a Failure text and maps it onto an exit code.
type greetError struct {
	text  string
	stage greeting.Stage
}

func (e *greetError) Error() string {
	return e.text
}

func (e *greetError) Unwrap() error {
	if e.stage == greeting.StageResolvingSecrets {
		return hellodb.ErrSecretResolution
	}
	return hellodb.ErrDatabase
}
