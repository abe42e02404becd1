// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/avery/internal/app"
	"github.com/vk/avery/registry"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) *ExitError {
	return &ExitError{Code: 2, Message: err.Error()}
}

func runtimeError(err error) *ExitError {
	return &ExitError{Code: 1, Message: err.Error()}
}

// options are the flag values shared by every command.
type options struct {
	modelsPath  string
	recordsPath string
	logFormat   string
	logLevel    string
}

func (o *options) config() (*app.Config, error) {
	return app.NewConfig(app.Config{
		ModelsPath:  o.modelsPath,
		RecordsPath: o.recordsPath,
		LogFormat:   strings.ToLower(o.logFormat),
		LogLevel:    strings.ToLower(o.logLevel),
	})
}

// NewRootCommand builds the avery command tree. Command output goes to outW
// and logs to errW; modules are registered into a fresh registry for each
// run.
func NewRootCommand(outW, errW io.Writer, modules ...registry.Module) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "avery",
		Short: "Check records against declarative model manifests",
		Long: `avery loads model manifests written in HCL, builds immutable records from
seed files and reports their validity together with their virtual attributes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(outW)
	rootCmd.SetErr(errW)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	newApp := func(cmd *cobra.Command) (*app.App, error) {
		cfg, err := opts.config()
		if err != nil {
			return nil, usageError(err)
		}
		slog.Debug("CLI parser finished successfully.", "config", cfg)
		return app.NewApp(cmd.Context(), outW, errW, cfg, registry.New(modules...)), nil
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Build a record from every seed and report whether it is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.Check(); err != nil {
				return runtimeError(err)
			}
			return nil
		},
	}
	checkCmd.Flags().StringVarP(&opts.modelsPath, "models", "m", "models", "Path to a manifest file or a directory of manifests.")
	checkCmd.Flags().StringVarP(&opts.recordsPath, "records", "r", "", "Path to a seed file or a directory of seed files.")
	_ = checkCmd.MarkFlagRequired("records")

	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "Print every model with its attributes and virtuals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.Describe(); err != nil {
				return runtimeError(err)
			}
			return nil
		},
	}
	describeCmd.Flags().StringVarP(&opts.modelsPath, "models", "m", "models", "Path to a manifest file or a directory of manifests.")

	rootCmd.AddCommand(checkCmd, describeCmd)
	return rootCmd
}

// Execute runs the command line in args. Every returned error is an
// *ExitError: code 2 for usage mistakes, code 1 for failures while running.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, modules ...registry.Module) error {
	slog.Debug("CLI parser started.")
	cmd := NewRootCommand(outW, errW, modules...)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return usageError(err)
}
