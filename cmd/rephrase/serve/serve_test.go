package servecmder

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/rephrase/pkg/config"
	"github.com/papercomputeco/rephrase/pkg/llm"
	"github.com/papercomputeco/rephrase/pkg/prompt"
	"github.com/papercomputeco/rephrase/pkg/provider"
)

var _ = Describe("Serve Command", func() {
	var (
		tmpDir     string
		configPath string
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		configPath = filepath.Join(tmpDir, "rephrase.toml")
	})

	setenv := func(key, value string) {
		prev, had := os.LookupEnv(key)
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(func() {
			if had {
				os.Setenv(key, prev)
			} else {
				os.Unsetenv(key)
			}
		})
	}

	parse := func(args ...string) (config.Config, error) {
		cmder := &serveCommander{}
		cmd := newServeCmd(cmder)
		Expect(cmd.ParseFlags(args)).To(Succeed())
		return cmder.loadConfig(cmd)
	}

	Describe("loadConfig", func() {
		It("applies flags over the config file", func() {
			Expect(os.WriteFile(configPath, []byte(`
listen = ":4000"

[provider]
name = "openai"
model = "gpt-4o-mini"

[prompt]
count = 15
`), 0o600)).To(Succeed())

			cfg, err := parse("--config", configPath, "--listen", "127.0.0.1:5000", "--count", "25", "--mode", "exactly", "--debug")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ListenAddr).To(Equal("127.0.0.1:5000"))
			Expect(cfg.Provider.Model).To(Equal("gpt-4o-mini"))
			Expect(cfg.Prompt.Count).To(Equal(25))
			Expect(cfg.Prompt.Mode).To(Equal("exactly"))
			Expect(cfg.Debug).To(BeTrue())
		})

		It("keeps file values for flags that were not set", func() {
			Expect(os.WriteFile(configPath, []byte("[prompt]\ncount = 7\n"), 0o600)).To(Succeed())

			cfg, err := parse("--config", configPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Prompt.Count).To(Equal(7))
		})

		It("rejects an unknown provider", func() {
			Expect(os.WriteFile(configPath, []byte(""), 0o600)).To(Succeed())

			_, err := parse("--config", configPath, "--provider", "bard")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("invalid configuration"))
		})

		It("does not carry the file key over to a provider chosen by flag", func() {
			setenv(provider.SiliconFlowKeyEnv, "")
			Expect(os.WriteFile(configPath, []byte("[provider]\nname = \"openai\"\napi_key = \"sk-openai-secret\"\n"), 0o600)).To(Succeed())

			cfg, err := parse("--config", configPath, "--provider", "siliconflow")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Provider.Name).To(Equal("siliconflow"))
			Expect(cfg.Provider.APIKey).To(BeEmpty())
		})

		It("rejects a missing explicit config file", func() {
			_, err := parse("--config", filepath.Join(tmpDir, "missing.toml"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("command execution", func() {
		It("fails before listening when the configuration is invalid", func() {
			Expect(os.WriteFile(configPath, []byte("[prompt]\ncount = 0\n"), 0o600)).To(Succeed())

			cmd := NewServeCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"--config", configPath})
			Expect(cmd.Execute()).To(MatchError(ContainSubstring("invalid configuration")))
		})
	})

	Describe("run", func() {
		It("reports a listen failure without shutting down", func() {
			busy, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(busy.Close)

			Expect(os.WriteFile(configPath, []byte(""), 0o600)).To(Succeed())

			out := &bytes.Buffer{}
			cmd := NewServeCmd()
			cmd.SetOut(out)
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"--config", configPath, "--listen", busy.Addr().String()})

			Expect(cmd.Execute()).To(MatchError(ContainSubstring("relay server failed")))
			Expect(out.String()).NotTo(ContainSubstring("shutting down relay"))
		})
	})

	Describe("buildRelay", func() {
		var upstreamCalls atomic.Int32

		startUpstream := func() string {
			upstreamCalls.Store(0)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				upstreamCalls.Add(1)
				var req llm.ChatRequest
				_ = json.NewDecoder(r.Body).Decode(&req)

				content := "unexpected prompt"
				if len(req.Messages) == 1 && strings.Contains(req.Messages[0].Content, "exactly 5") {
					content = "One.\nTwo.\nThree.\nFour.\nFive."
				}
				_ = json.NewEncoder(w).Encode(llm.ChatResponse{
					Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: content}}},
				})
			}))
			DeferCleanup(srv.Close)
			return srv.URL
		}

		post := func(addr, body string) (int, map[string]any) {
			resp, err := http.Post(addr+"/api/paraphrase", "application/json", strings.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			raw, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			var result map[string]any
			Expect(json.Unmarshal(raw, &result)).To(Succeed())
			return resp.StatusCode, result
		}

		It("serves paraphrases end to end", func() {
			cfg := config.Defaults()
			cfg.Provider.Name = "siliconflow"
			cfg.Provider.APIKey = "sk-test"
			cfg.Provider.BaseURL = startUpstream()
			cfg.Prompt.Count = 5

			r, err := buildRelay(cfg, "test", zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			listener, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			go func() {
				_ = r.RunWithListener(listener)
			}()
			DeferCleanup(r.Shutdown)

			addr := "http://" + listener.Addr().String()

			status, body := post(addr, `{"sentence": "I am happy today."}`)
			Expect(status).To(Equal(http.StatusOK))
			Expect(strings.Split(body["paraphrases"].(string), "\n")).To(HaveLen(5))

			status, body = post(addr, `{}`)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(Equal(map[string]any{"error": "Sentence is required"}))

			Expect(upstreamCalls.Load()).To(Equal(int32(1)))
		})

		It("fails fast on a provider switched by environment without its own key", func() {
			setenv(config.EnvProvider, "siliconflow")
			setenv(provider.SiliconFlowKeyEnv, "")
			Expect(os.WriteFile(configPath, []byte(`
[provider]
name = "openai"
api_key = "sk-openai-secret"
base_url = "`+startUpstream()+`"
`), 0o600)).To(Succeed())

			cfg, err := parse("--config", configPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Provider.APIKey).To(BeEmpty())

			r, err := buildRelay(cfg, "test", zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			listener, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			go func() {
				_ = r.RunWithListener(listener)
			}()
			DeferCleanup(r.Shutdown)

			status, body := post("http://"+listener.Addr().String(), `{"sentence": "I am happy today."}`)
			Expect(status).To(Equal(http.StatusInternalServerError))
			Expect(body).To(Equal(map[string]any{"error": "Server is missing SILICONFLOW_API_KEY"}))
			Expect(upstreamCalls.Load()).To(BeZero())
		})

		It("rejects an invalid prompt template", func() {
			cfg := config.Defaults()
			cfg.Prompt.Template = "{{.Sentence"

			_, err := buildRelay(cfg, "test", zap.NewNop())
			Expect(err).To(HaveOccurred())
		})

		It("rejects an invalid count", func() {
			cfg := config.Defaults()
			cfg.Prompt.Count = 0

			_, err := buildRelay(cfg, "test", zap.NewNop())
			Expect(err).To(MatchError(prompt.ErrInvalidCount))
		})
	})
})
