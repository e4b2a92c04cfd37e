package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lgc202/llmtrace/llm"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const (
	chatRequest  = `{"model":"gpt-4o","stream":true,"user":"u1","messages":[{"role":"user","content":"hi"}]}`
	chatResponse = "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"role\":\"assistant\",\"content\":\"Hel\"}}]}\n\n" +
		"data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"lo\"},\"finish_reason\":\"stop\"}]}\n\n" +
		"data: [DONE]\n"
)

func TestNormalize(t *testing.T) {
	resp := writeTemp(t, "resp.txt", chatResponse)

	out, err := run(t, chatRequest, "normalize", "--request", "-", "--response", resp, "--trace-id", "t-1", "--session-id", "s-1", "--response-time", "1.5s")
	require.NoError(t, err)

	var step llm.TraceStep
	require.NoError(t, json.Unmarshal([]byte(out), &step))
	require.Equal(t, "t-1", step.TraceID)
	require.Equal(t, "s-1", step.SessionID)
	require.Equal(t, "Hello", step.Response.FirstContent())
	require.Equal(t, "openai", step.Request.ModelInfo.Provider)
	require.Equal(t, &llm.RequestIdentity{User: "u1"}, step.Request.Identity)
	require.EqualValues(t, 1500, step.Response.ModelResponseTime.Std().Milliseconds())
	require.Contains(t, out, `"modelResponseTime": 1500`)
}

func TestNormalize_ConfigModels(t *testing.T) {
	cfg := writeTemp(t, "llmtrace.yaml", "provider: proxy\nmodels:\n  - name: house-model\n    currency: eur\n    prompt_token_cost_per_1m: 3\n")

	out, err := run(t, `{"model":"house-model","prompt":"p"}`, "--config", cfg, "normalize", "-r", "-", "--kind", "completion")
	require.NoError(t, err)

	var step llm.TraceStep
	require.NoError(t, json.Unmarshal([]byte(out), &step))
	require.Nil(t, step.Response)
	require.NotEmpty(t, step.TraceID)
	require.Equal(t, llm.TextModelInfo{Name: "house-model", Provider: "proxy", Currency: "eur", PromptTokenCostPer1M: 3}, *step.Request.ModelInfo)
}

func TestNormalize_UnknownKind(t *testing.T) {
	_, err := run(t, chatRequest, "normalize", "-r", "-", "--kind", "embed")
	require.ErrorContains(t, err, `unknown kind "embed"`)
}

func TestMerge(t *testing.T) {
	step := func(content, id, session string) string {
		b, err := json.Marshal(llm.TraceStep{
			TraceID: id,
			Response: &llm.TraceStepResponse{TextResponse: llm.TextResponse{
				SessionID: session,
				RemoteID:  id,
				Results:   []llm.TextResponseResult{{Content: content, ID: id}},
			}},
		})
		require.NoError(t, err)
		return writeTemp(t, id+".json", string(b))
	}

	out, err := run(t, "", "merge", step("Hello, ", "a", "s1"), step("world!", "b", "s2"), writeTemp(t, "empty.json", `{"traceId":"c"}`))
	require.NoError(t, err)

	var merged llm.TextResponse
	require.NoError(t, json.Unmarshal([]byte(out), &merged))
	require.Equal(t, "Hello, world!", merged.FirstContent())
	require.Equal(t, "b", merged.RemoteID)
	require.Equal(t, "s2", merged.SessionID)
	require.Equal(t, "b", merged.Results[0].ID)
}

func TestSendAndMemory(t *testing.T) {
	var traces int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		switch r.URL.Path {
		case "/api/t/traces":
			traces++
			_, _ = w.Write([]byte(`{"ok":true}`))
		case "/api/t/traces/memory":
			_, _ = w.Write([]byte(`{"memory":[{"role":"user","text":"remember me"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := writeTemp(t, "llmtrace.yaml", "collector:\n  endpoint: "+srv.URL+"\n  headers:\n    x-api-key: secret\nlog:\n  level: error\n")
	stepFile := writeTemp(t, "step.json", `{"traceId":"t-9","createdAt":"2024-01-01T00:00:00Z"}`)

	out, err := run(t, "", "-c", cfg, "send", stepFile)
	require.NoError(t, err)
	require.Equal(t, "sent t-9\n", out)
	require.Equal(t, 1, traces)

	out, err = run(t, "", "-c", cfg, "memory", "--session-id", "s")
	require.NoError(t, err)
	require.Contains(t, out, "ROLE")
	require.Contains(t, out, "remember me")
}

func TestSend_RequiresEndpoint(t *testing.T) {
	t.Setenv("LLMTRACE_COLLECTOR_ENDPOINT", "")
	stepFile := writeTemp(t, "step.json", `{"traceId":"t"}`)

	_, err := run(t, "", "send", stepFile)
	require.ErrorIs(t, err, llm.ErrEndpointRequired)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version", "-o", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"gitVersion"`)

	_, err = run(t, "", "version", "-o", "yaml")
	require.Error(t, err)
}

func TestBadLogLevel(t *testing.T) {
	_, err := run(t, chatRequest, "--log-level", "loud", "normalize", "-r", "-")
	require.ErrorContains(t, err, "log level")
}

func TestModels(t *testing.T) {
	cfg := writeTemp(t, "llmtrace.yaml", "provider: deepseek\nmodels:\n  - name: house-model\n    currency: eur\n    prompt_token_cost_per_1m: 3\n")

	out, err := run(t, "", "-c", cfg, "models")
	require.NoError(t, err)
	require.Contains(t, out, "CURRENCY")
	require.Contains(t, out, "deepseek-reasoner")
	require.Contains(t, out, "house-model")
	require.NotContains(t, out, "gpt-4o")

	out, err = run(t, "", "-c", cfg, "models", "--json")
	require.NoError(t, err)
	var models []llm.TextModelInfo
	require.NoError(t, json.Unmarshal([]byte(out), &models))
	require.Equal(t, "house-model", models[0].Name)
}

func TestNormalize_ProviderPreset(t *testing.T) {
	t.Setenv("LLMTRACE_PROVIDER", "qwen")

	out, err := run(t, `{"model":"qwen-max","messages":[{"role":"user","content":"hi"}]}`, "normalize", "-r", "-")
	require.NoError(t, err)

	var step llm.TraceStep
	require.NoError(t, json.Unmarshal([]byte(out), &step))
	require.Equal(t, "qwen", step.Request.ModelInfo.Provider)
	require.Equal(t, "cny", step.Request.ModelInfo.Currency)
}

func TestIngest(t *testing.T) {
	stream, err := json.Marshal(chatResponse)
	require.NoError(t, err)
	input := strings.Join([]string{
		`{"traceId":"t-1","sessionId":"s","request":` + chatRequest + `,"response":` + string(stream) + `,"responseTimeMs":250}`,
		``,
		`{"traceId":"t-2","kind":"completion","request":{"model":"gpt-3.5-turbo-instruct","prompt":"p"},"response":{"id":"cmpl-1","object":"text_completion","choices":[{"index":0,"text":"done"}]}}`,
		`{"traceId":"t-3","request":`,
	}, "\n")

	out, err := run(t, input, "ingest", "--log-level", "error")
	require.ErrorContains(t, err, "1 of 3 exchanges failed")

	var steps []llm.TraceStep
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var step llm.TraceStep
		require.NoError(t, json.Unmarshal(sc.Bytes(), &step))
		steps = append(steps, step)
	}
	require.Len(t, steps, 2)

	require.Equal(t, "t-1", steps[0].TraceID)
	require.Equal(t, "Hello", steps[0].Response.FirstContent())
	require.EqualValues(t, 250, steps[0].Response.ModelResponseTime.Std().Milliseconds())
	require.Equal(t, "t-2", steps[1].TraceID)
	require.Equal(t, "done", steps[1].Response.FirstContent())
	require.Equal(t, "p", steps[1].Request.Prompt)
}

func TestIngest_WatchRequiresConfigFile(t *testing.T) {
	_, err := run(t, "", "ingest", "--watch")
	require.ErrorContains(t, err, "watch config")
}

func TestIngest_WatchAppliesConfigEdits(t *testing.T) {
	cfgPath := writeTemp(t, "llmtrace.yaml", "provider: openai\nlog:\n  level: error\n")

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	cmd := newRootCmd()
	cmd.SetIn(inR)
	cmd.SetOut(outW)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"-c", cfgPath, "ingest", "--watch"})

	done := make(chan error, 1)
	go func() {
		err := cmd.Execute()
		_ = outW.Close()
		done <- err
	}()

	lines := bufio.NewScanner(outR)
	line := `{"request":{"model":"qwen-max","prompt":"p"}}` + "\n"
	provider := func() string {
		if _, err := io.WriteString(inW, line); err != nil {
			return ""
		}
		if !lines.Scan() {
			return ""
		}
		var step llm.TraceStep
		if err := json.Unmarshal(lines.Bytes(), &step); err != nil {
			return ""
		}
		return step.Request.ModelInfo.Provider
	}

	require.Equal(t, "openai", provider())

	require.NoError(t, os.WriteFile(cfgPath, []byte("provider: qwen\nlog:\n  level: error\n"), 0o600))
	require.Eventually(t, func() bool { return provider() == "qwen" }, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, inW.Close())
	require.NoError(t, <-done)
}
