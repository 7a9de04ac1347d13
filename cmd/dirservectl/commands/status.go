package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/dirserve/internal/cli/health"
	"github.com/marmos91/dirserve/internal/cli/output"
	"github.com/marmos91/dirserve/internal/cli/timeutil"
)

var (
	statusAPI    string
	statusOutput string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the status of a dirserve server through its HTTP API.

The liveness endpoint reports uptime; the readiness endpoint reports whether
the served directory can be listed, with its file count and total size.

Examples:
  # Check status of a local server
  dirservectl status

  # Another host, as JSON
  dirservectl status --api http://files.local:9090 -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAPI, "api", "http://127.0.0.1:9090", "Base URL of the server's HTTP API")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status for display.
type ServerStatus struct {
	Server       string `json:"server" yaml:"server"`
	Status       string `json:"status" yaml:"status"`
	Ready        bool   `json:"ready" yaml:"ready"`
	StartedAt    string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime       string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	UptimeSec    int64  `json:"uptime_sec,omitempty" yaml:"uptime_sec,omitempty"`
	Root         string `json:"root,omitempty" yaml:"root,omitempty"`
	Files        int    `json:"files" yaml:"files"`
	Bytes        int64  `json:"bytes" yaml:"bytes"`
	TransferUnit int    `json:"transfer_unit,omitempty" yaml:"transfer_unit,omitempty"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	base := strings.TrimRight(statusAPI, "/")
	status := ServerStatus{Server: base, Status: "unreachable"}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	var live health.Response
	if err := getJSON(httpClient, base+"/health", &live); err != nil {
		status.Error = err.Error()
	} else {
		status.Status = live.Status
		status.StartedAt = live.Data.StartedAt
		status.Uptime = live.Data.Uptime
		status.UptimeSec = live.Data.UptimeSec

		var ready health.ReadyResponse
		if err := getJSON(httpClient, base+"/health/ready", &ready); err != nil {
			status.Error = err.Error()
		} else {
			status.Ready = ready.Healthy()
			status.Root = ready.Data.Root
			status.Files = ready.Data.Files
			status.Bytes = ready.Data.Bytes
			status.TransferUnit = ready.Data.TransferUnit
			status.Error = ready.Error
		}
	}

	p := newPrinter(os.Stdout, format)
	switch format {
	case output.FormatJSON, output.FormatYAML:
		return p.Print(status)
	default:
		printStatusTable(p, status)
	}
	return nil
}

// getJSON decodes the body of a GET whatever its status code: the health
// endpoints answer 503 with a JSON body when unhealthy.
func getJSON(c *http.Client, url string, v any) error {
	resp, err := c.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid response from %s (HTTP %d)", url, resp.StatusCode)
	}
	return nil
}

func printStatusTable(p *output.Printer, status ServerStatus) {
	p.Println()
	p.Println("dirserve Server Status")
	p.Println("======================")
	p.Println()

	switch {
	case status.Status == "unreachable":
		p.Error("Unreachable")
	case status.Ready:
		p.Success("Running")
	default:
		p.Warning("Running (not ready)")
	}

	pairs := [][2]string{{"Server", status.Server}}
	if status.StartedAt != "" {
		pairs = append(pairs, [2]string{"Started", timeutil.FormatTime(status.StartedAt)})
	}
	if status.Uptime != "" {
		pairs = append(pairs, [2]string{"Uptime", timeutil.FormatUptimeSeconds(status.UptimeSec)})
	}
	if status.Root != "" {
		pairs = append(pairs,
			[2]string{"Root", status.Root},
			[2]string{"Files", fmt.Sprintf("%d", status.Files)},
			[2]string{"Size", output.Bytes(status.Bytes)},
			[2]string{"Transfer unit", output.Bytes(int64(status.TransferUnit))},
		)
	}
	if status.Error != "" {
		pairs = append(pairs, [2]string{"Error", status.Error})
	}
	_ = output.SimpleTable(p.Writer(), pairs)
	p.Println()
}
