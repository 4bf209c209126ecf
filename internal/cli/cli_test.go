package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vk/phydrago/internal/app"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		args           []string
		expectExit     bool
		expectErr      string
		expectedConfig *app.Config
		checkOutput    func(t *testing.T, output string)
	}{
		{
			name: "Happy Path with all flags",
			args: []string{
				"-model", "/test/model",
				"--steps=20",
				"--dt=0.5",
				"--output=out.json",
				"--output-format=JSON",
				"--log-level=debug",
				"--log-format=json",
				"--healthcheck-port=8080",
			},
			expectedConfig: &app.Config{
				ModelPath:       "/test/model",
				Steps:           20,
				DT:              0.5,
				OutputPath:      "out.json",
				OutputFormat:    "json",
				LogLevel:        "debug",
				LogFormat:       "json",
				HealthcheckPort: 8080,
			},
		},
		{
			name: "Shorthand flag and defaults",
			args: []string{"-m", "/short/path"},
			expectedConfig: &app.Config{
				ModelPath: "/short/path",
				LogLevel:  "info",
				LogFormat: "text",
			},
		},
		{
			name: "Positional argument for path",
			args: []string{"-graph", "mermaid", "/positional/path"},
			expectedConfig: &app.Config{
				ModelPath: "/positional/path",
				Graph:     "mermaid",
				LogLevel:  "info",
				LogFormat: "text",
			},
		},
		{
			name:       "Help flag triggers clean exit",
			args:       []string{"-h"},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.Contains(t, output, "Usage:")
				require.Contains(t, output, "-healthcheck-port")
			},
		},
		{
			name:       "No path triggers clean exit with usage",
			args:       []string{},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.Contains(t, output, "MODEL_PATH")
			},
		},
		{
			name:      "Unknown flag",
			args:      []string{"--workers=4", "/path"},
			expectErr: "flag provided but not defined: -workers",
		},
		{
			name:      "Invalid log level returns an error",
			args:      []string{"--log-level=foo", "/path"},
			expectErr: "invalid log-level",
		},
		{
			name:      "Invalid log format returns an error",
			args:      []string{"--log-format=yaml", "/path"},
			expectErr: "invalid log-format",
		},
		{
			name:      "Invalid graph format",
			args:      []string{"--graph=svg", "/path"},
			expectErr: `invalid graph format "svg"`,
		},
		{
			name:      "Invalid output format",
			args:      []string{"--output-format=csv", "/path"},
			expectErr: `unknown output format "csv"`,
		},
		{
			name:      "Negative steps",
			args:      []string{"--steps=-1", "/path"},
			expectErr: "steps must not be negative",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			out := &bytes.Buffer{}

			// --- Act ---
			cfg, shouldExit, err := Parse(tc.args, out)

			// --- Assert ---
			if tc.expectErr != "" {
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr), "expected an ExitError, got %v", err)
				require.Equal(t, 2, exitErr.Code)
				require.Contains(t, exitErr.Message, tc.expectErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectExit, shouldExit)

			if tc.expectedConfig != nil {
				if diff := cmp.Diff(tc.expectedConfig, cfg); diff != "" {
					t.Errorf("Config mismatch (-want +got):\n%s", diff)
				}
			}

			if tc.checkOutput != nil {
				tc.checkOutput(t, out.String())
			}
		})
	}
}
