package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/TIMPICKLE/agentflow/internal/log"
	"github.com/TIMPICKLE/agentflow/pkg/coordinator"
)

// StartServer exposes read-only status endpoints over the coordinator.
func StartServer(port string, co *coordinator.Coordinator) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/workflows", WorkflowsHandler(co))
	mux.HandleFunc("/workflows/", WorkflowByIDHandler(co))
	mux.HandleFunc("/status", StatusHandler(co))

	log.GetLogger().Infof("Starting agentflow server on :%s", port)
	return http.ListenAndServe(":"+port, mux)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "agentflow server is running")
}

// WorkflowsHandler lists registered workflows.
func WorkflowsHandler(co *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		workflows := co.ListWorkflows()
		if len(workflows) == 0 {
			fmt.Fprintf(w, "No workflows found.\n")
			return
		}
		for _, wf := range workflows {
			fmt.Fprintf(w, "- ID: %s, Name: %s, Status: %s, Progress: %.1f%%, Created: %s\n",
				wf.ID, wf.Name, wf.Status, wf.Progress, wf.CreatedAt.Format(time.RFC3339))
		}
	}
}

// WorkflowByIDHandler serves a JSON status snapshot for one workflow.
func WorkflowByIDHandler(co *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/workflows/")
		id = strings.TrimSuffix(id, "/status")
		if id == "" {
			http.Error(w, "Missing workflow id", http.StatusBadRequest)
			return
		}
		report, err := co.WorkflowStatus(id)
		if err != nil {
			log.GetLogger().Errorf("Failed to get workflow status: %v", err)
			http.Error(w, fmt.Sprintf("Workflow not found: %v", err), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.GetLogger().Errorf("Failed to encode workflow status: %v", err)
		}
	}
}

// StatusHandler serves the aggregate system snapshot as JSON.
func StatusHandler(co *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(co.SystemStatus()); err != nil {
			log.GetLogger().Errorf("Failed to encode system status: %v", err)
		}
	}
}
