package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	internal_http "github.com/TIMPICKLE/agentflow/internal/http"
	"github.com/TIMPICKLE/agentflow/internal/log"
	"github.com/TIMPICKLE/agentflow/pkg/coordinator"
	"github.com/TIMPICKLE/agentflow/pkg/dsl"
)

func SetupCLI(rootCmd *cobra.Command) {
	runCmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Execute a YAML-defined workflow with the builtin agents",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			maxConcurrent, err := cmd.Flags().GetInt("max-concurrent")
			if err != nil {
				log.GetLogger().Errorf("Error retrieving max-concurrent flag: %v", err)
				os.Exit(1)
			}
			runWorkflow(args[0], maxConcurrent)
		},
	}
	runCmd.Flags().Int("max-concurrent", coordinator.DefaultMaxConcurrent,
		"maximum number of simultaneously dispatched tasks")

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a YAML workflow definition",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			wf, err := dsl.NewParser().ParseFile(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid workflow definition: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stdout, "Workflow '%s' is valid (%d tasks)\n", wf.Name, len(wf.Tasks))
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the status HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				log.GetLogger().Debugf("No .env file loaded: %v", err)
			}
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			co := newCoordinator(coordinator.DefaultMaxConcurrent)
			if err := internal_http.StartServer(port, co); err != nil {
				log.GetLogger().Errorf("Server failed: %v", err)
				os.Exit(1)
			}
		},
	}

	rootCmd.AddCommand(runCmd, validateCmd, serveCmd)
}

func newCoordinator(maxConcurrent int) *coordinator.Coordinator {
	co := coordinator.New(log.GetLogger(), coordinator.WithMaxConcurrent(maxConcurrent))
	for _, a := range builtinAgents() {
		if err := co.RegisterAgent(a); err != nil {
			log.GetLogger().Errorf("Failed to register agent %s: %v", a.ID(), err)
			os.Exit(1)
		}
	}
	return co
}

func runWorkflow(file string, maxConcurrent int) {
	wf, err := dsl.NewParser().ParseFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid workflow definition: %v\n", err)
		os.Exit(1)
	}

	co := newCoordinator(maxConcurrent)
	if err := co.AddWorkflow(wf); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to add workflow: %v\n", err)
		os.Exit(1)
	}

	result, err := co.ExecuteWorkflow(context.Background(), wf.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: workflow failed: %v\n", err)
		printSummary(co, wf.ID)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Workflow '%s' completed\n", result.Name)
	printSummary(co, wf.ID)
}

func printSummary(co *coordinator.Coordinator, workflowID string) {
	report, err := co.WorkflowStatus(workflowID)
	if err != nil {
		log.GetLogger().Errorf("Failed to get workflow status: %v", err)
		return
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.GetLogger().Errorf("Failed to marshal workflow status: %v", err)
		return
	}
	fmt.Fprintf(os.Stdout, "%s\n", out)
}
