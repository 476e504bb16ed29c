package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/swarmflow/agent/persistence"
	"github.com/BaSui01/swarmflow/config"
)

const travelTeam = `
name: travel
participants:
  - provider: participants.scripted
    config:
      name: travel_agent
      handoffs: [flights_refunder, user]
      replies:
        - content: "Transferring to the refund desk."
          handoff_to: flights_refunder
  - provider: participants.scripted
    config:
      name: flights_refunder
      handoffs: [travel_agent, user]
      replies:
        - content: "Please share your flight number."
          handoff_to: user
termination_condition:
  provider: termination.handoff
  config:
    target: user
max_turns: 10
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// fileStoreEnv points every command at a file store under a temp dir.
func fileStoreEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SWARMFLOW_STORE_TYPE", "file")
	t.Setenv("SWARMFLOW_STORE_BASE_DIR", t.TempDir())
	t.Setenv("SWARMFLOW_LOG_OUTPUT_PATHS", "stderr")
	t.Setenv("SWARMFLOW_LOG_LEVEL", "error")
}

func TestRunValidate(t *testing.T) {
	teamPath := writeFile(t, t.TempDir(), "team.yaml", travelTeam)

	var out bytes.Buffer
	require.NoError(t, runValidate([]string{"--team", teamPath}, &out))
	assert.Contains(t, out.String(), "team travel is valid")
	assert.Contains(t, out.String(), "* travel_agent")
	assert.Contains(t, out.String(), "  flights_refunder")
}

func TestRunValidate_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runValidate(nil, &out), "missing --team")

	// 第一个参与者不能发起交接
	noHandoff := `
participants:
  - provider: participants.scripted
    config:
      name: Alice
`
	teamPath := writeFile(t, t.TempDir(), "team.yaml", noHandoff)
	assert.Error(t, runValidate([]string{"--team", teamPath}, &out))
}

func TestRunRun_PauseAndResume(t *testing.T) {
	fileStoreEnv(t)
	teamPath := writeFile(t, t.TempDir(), "team.yaml", travelTeam)

	var out bytes.Buffer
	err := runRun([]string{"--team", teamPath, "--conversation", "trip-1", "--task", "I want a refund"}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "[TextMessage] user: I want a refund")
	assert.Contains(t, out.String(), "[HandoffMessage] travel_agent -> flights_refunder")
	assert.Contains(t, out.String(), "[HandoffMessage] flights_refunder -> user")
	assert.Contains(t, out.String(), "stopped: Handoff to user from flights_refunder detected.")
	assert.Contains(t, out.String(), "next speaker: flights_refunder")

	// 恢复时必须交接给团队成员
	out.Reset()
	err = runRun([]string{"--team", teamPath, "--conversation", "trip-1",
		"--handoff-to", "flights_refunder", "--task", "AF123"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[HandoffMessage] user -> flights_refunder: AF123")
	assert.Contains(t, out.String(), "stopped: Handoff to user from flights_refunder detected.")

	out.Reset()
	require.NoError(t, runState([]string{"show", "--conversation", "trip-1"}, &out))
	assert.Contains(t, out.String(), "speaker: flights_refunder")
	assert.Contains(t, out.String(), "messages: 5")
}

func TestRunRun_ResumeToUnknownParticipant(t *testing.T) {
	fileStoreEnv(t)
	teamPath := writeFile(t, t.TempDir(), "team.yaml", travelTeam)

	var out bytes.Buffer
	require.NoError(t, runRun([]string{"--team", teamPath, "--conversation", "trip-2", "--task", "hi"}, &out))

	err := runRun([]string{"--team", teamPath, "--conversation", "trip-2",
		"--handoff-to", "concierge", "--task", "hello?"}, &out)
	assert.Error(t, err)
}

func TestRunRun_RequiresTaskForNewConversation(t *testing.T) {
	fileStoreEnv(t)
	teamPath := writeFile(t, t.TempDir(), "team.yaml", travelTeam)

	var out bytes.Buffer
	assert.Error(t, runRun([]string{"--team", teamPath, "--conversation", "fresh"}, &out))
	assert.Error(t, runRun([]string{"--task", "hi"}, &out), "missing --team")
}

func TestRunState_ListAndDelete(t *testing.T) {
	fileStoreEnv(t)
	teamPath := writeFile(t, t.TempDir(), "team.yaml", travelTeam)

	var out bytes.Buffer
	require.NoError(t, runRun([]string{"--team", teamPath, "--conversation", "a-1", "--task", "hi"}, &out))
	require.NoError(t, runRun([]string{"--team", teamPath, "--conversation", "b-2", "--task", "hi"}, &out))

	out.Reset()
	require.NoError(t, runState([]string{"list"}, &out))
	assert.Equal(t, "a-1\nb-2\n", out.String())

	require.NoError(t, runState([]string{"delete", "--conversation", "a-1"}, &out))
	err := runState([]string{"show", "--conversation", "a-1"}, &out)
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	assert.Error(t, runState(nil, &out))
	assert.Error(t, runState([]string{"purge"}, &out))
	assert.Error(t, runState([]string{"show"}, &out))
}

func TestLoadTeam_ConfigDefaults(t *testing.T) {
	noLimit := `
participants:
  - provider: participants.scripted
    config:
      name: Alice
      handoffs: [Bob]
  - provider: participants.scripted
    config:
      name: Bob
`
	teamPath := writeFile(t, t.TempDir(), "team.yaml", noLimit)

	team, err := loadTeam(teamPath, config.TeamConfig{MaxTurns: 3}, zap.NewNop())
	require.NoError(t, err)

	def, err := team.Definition()
	require.NoError(t, err)
	require.NotNil(t, def.MaxTurns)
	assert.Equal(t, 3, *def.MaxTurns)
}

func TestPrintVersion(t *testing.T) {
	var out bytes.Buffer
	printVersion(&out)
	assert.Contains(t, out.String(), "swarmflow dev")
}

func TestRunRun_WithMetricsServer(t *testing.T) {
	fileStoreEnv(t)
	teamPath := writeFile(t, t.TempDir(), "team.yaml", travelTeam)

	var out bytes.Buffer
	err := runRun([]string{"--team", teamPath, "--conversation", "metered",
		"--metrics-addr", "127.0.0.1:0", "--task", "hi"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "conversation: metered")
}
