package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// iRunCommand runs a command line from the module root. "{tmp}" expands to
// the scenario's temp directory.
func (tc *TestContext) iRunCommand(command string) error {
	command = tc.substitute(command)
	tc.LastCommand = command

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = tc.WorkingDir
	cmd.Env = append(os.Environ(), tc.EnvVars...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	tc.LastDuration = time.Since(start)
	tc.LastStdout = stdout.String()
	tc.LastStderr = stderr.String()
	tc.LastError = err

	tc.LastExitCode = 0
	if err != nil {
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			tc.LastExitCode = exitError.ExitCode()
		} else {
			tc.LastExitCode = -1
		}
	}
	return nil
}

func (tc *TestContext) theCommandShouldSucceed() error {
	if tc.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nStdout: %s\nStderr: %s",
			tc.LastExitCode, tc.LastError, tc.LastStdout, tc.LastStderr)
	}
	return nil
}

func (tc *TestContext) theCommandShouldFail() error {
	if tc.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nStdout: %s", tc.LastStdout)
	}
	return nil
}

func (tc *TestContext) theOutputShouldContain(expected string) error {
	if !strings.Contains(tc.LastStdout, expected) {
		return fmt.Errorf("output does not contain %q\nActual output: %s", expected, tc.LastStdout)
	}
	return nil
}

func (tc *TestContext) theOutputShouldNotContain(unexpected string) error {
	if strings.Contains(tc.LastStdout, unexpected) {
		return fmt.Errorf("output unexpectedly contains %q\nActual output: %s", unexpected, tc.LastStdout)
	}
	return nil
}

func (tc *TestContext) theOutputShouldBeEmpty() error {
	if strings.TrimSpace(tc.LastStdout) != "" {
		return fmt.Errorf("expected empty output, got: %s", tc.LastStdout)
	}
	return nil
}

// theOutputLinesShouldBe compares stdout line by line with a doc string.
func (tc *TestContext) theOutputLinesShouldBe(doc *godog.DocString) error {
	want := strings.TrimSpace(tc.substitute(doc.Content))
	got := strings.TrimSpace(tc.LastStdout)
	if want != got {
		return fmt.Errorf("output mismatch\nwant:\n%s\ngot:\n%s", want, got)
	}
	return nil
}

func (tc *TestContext) theOutputShouldBeValidJSON() error {
	var v any
	if err := json.Unmarshal([]byte(tc.LastStdout), &v); err != nil {
		return fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, tc.LastStdout)
	}
	return nil
}

// theJSONReportShouldHaveSymbols checks the symbol count of one report.
func (tc *TestContext) theJSONReportShouldHaveSymbols(index, count int) error {
	var doc struct {
		Reports []struct {
			Symbols []json.RawMessage `json:"symbols"`
		} `json:"reports"`
	}
	if err := json.Unmarshal([]byte(tc.LastStdout), &doc); err != nil {
		return fmt.Errorf("output is not a JSON report: %w", err)
	}
	if index >= len(doc.Reports) {
		return fmt.Errorf("only %d reports in output", len(doc.Reports))
	}
	if got := len(doc.Reports[index].Symbols); got != count {
		return fmt.Errorf("report %d has %d symbols, want %d", index, got, count)
	}
	return nil
}

func (tc *TestContext) theErrorShouldMention(text string) error {
	if !strings.Contains(tc.LastStderr, text) {
		return fmt.Errorf("stderr does not mention %q\nStderr: %s", text, tc.LastStderr)
	}
	return nil
}

func (tc *TestContext) theFileShouldContain(name, content string) error {
	data, err := os.ReadFile(tc.substitute(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !strings.Contains(string(data), content) {
		return fmt.Errorf("file %s does not contain %q\nContent: %s", name, content, data)
	}
	return nil
}

func (tc *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	tc.AddEnvVar(name, tc.substitute(value))
	return nil
}

// RegisterCommonSteps registers command execution and output steps.
func (tc *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, tc.iRunCommand)
	sc.Step(`^the command should succeed$`, tc.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, tc.theCommandShouldFail)

	sc.Step(`^the output should contain "([^"]*)"$`, tc.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, tc.theOutputShouldNotContain)
	sc.Step(`^the output should be empty$`, tc.theOutputShouldBeEmpty)
	sc.Step(`^the output should be:$`, tc.theOutputLinesShouldBe)
	sc.Step(`^the output should be valid JSON$`, tc.theOutputShouldBeValidJSON)
	sc.Step(`^report (\d+) should have (\d+) symbols?$`, tc.theJSONReportShouldHaveSymbols)
	sc.Step(`^the error should mention "([^"]*)"$`, tc.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, tc.theFileShouldContain)
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, tc.theEnvironmentVariableIsSetTo)
}
