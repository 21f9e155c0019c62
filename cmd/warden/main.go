// Package main is the warden engine's entry point: it builds every
// subsystem, wires them into a Tool Dispatcher, and runs the Transport Loop
// over stdin/stdout until the agent process that spawned it closes the pipe.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"warden/internal/audio"
	"warden/internal/background"
	"warden/internal/capture"
	"warden/internal/config"
	"warden/internal/devtools"
	"warden/internal/engine"
	"warden/internal/focus"
	"warden/internal/hotkey"
	"warden/internal/input"
	"warden/internal/journal"
	"warden/internal/logging"
	"warden/internal/memory"
	"warden/internal/ocr"
	"warden/internal/redact"
	"warden/internal/resolve"
	"warden/internal/safety"
	"warden/internal/sandbox"
	"warden/internal/schedule"
	"warden/internal/scraper"
	"warden/internal/system"
	"warden/internal/tools"
	"warden/internal/transport"
	"warden/internal/uia"
	"warden/internal/watch"
	"warden/internal/window"
)

// devtoolsPortLow/High bound the Chrome DevTools Protocol discovery scan
// when no browser-specific port is supplied to a devtools tool call.
const (
	devtoolsPortLow  = 9222
	devtoolsPortHigh = 9232
)

var (
	verbose   bool
	configDir string
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "warden is the desktop-automation engine behind an agent-facing tool-call protocol",
	Long: `warden drives Windows desktop automation - accessibility-tree reads, input
synthesis, window management, screen capture and OCR, CDP-connected browser
control, and a scheduling/memory layer - behind a line-delimited JSON
protocol on stdin/stdout. It has no UI of its own; it is meant to be
spawned by an agent process.

Run without a subcommand to start serving requests on stdin/stdout.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}

		dir := configDir
		if dir == "" {
			d, err := config.Dir()
			if err != nil {
				return fmt.Errorf("resolve config directory: %w", err)
			}
			dir = d
		}
		configDir = dir

		if err := logging.Initialize(configDir); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Transport Loop over stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the engine version",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := buildEngine(configDir)
		if err != nil {
			return err
		}
		return printToolResult(eng.Dispatch(cmd.Context(), "version", nil))
	},
}

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics",
	Short: "Report backend health without starting the Transport Loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := buildEngine(configDir)
		if err != nil {
			return err
		}
		return printToolResult(eng.Dispatch(cmd.Context(), "diagnostics", nil))
	},
}

func printToolResult(resp engine.Response) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	if resp.Error != "" {
		return fmt.Errorf("%s", resp.Error)
	}
	return nil
}

func runServe(ctx context.Context) error {
	eng, deps, err := buildEngine(configDir)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if deps.Hotkeys != nil && deps.Safety != nil {
		if deps.Config.Security.KillSwitchEnabled {
			if regErr := deps.Hotkeys.Register("kill_switch", deps.Config.Security.KillSwitchHotkey, deps.Safety.Kill); regErr != nil {
				logger.Warn("could not register kill-switch hotkey", zap.Error(regErr))
			}
		}
		defer deps.Hotkeys.Close()
	}

	logger.Info("warden engine starting", zap.String("config_dir", configDir), zap.Int("tools", eng.Registry.Count()))

	loop := transport.New(os.Stdin, os.Stdout, func(ctx context.Context, tool string, params map[string]any) transport.Response {
		return eng.Dispatch(ctx, tool, params)
	})
	return loop.Run(ctx)
}

// buildEngine constructs every subsystem and wires them into both the Tool
// Dispatcher (Engine) and the tool registry (Deps/RegisterAll). Every
// platform-specific primitive (WindowWalker, GDIGrabber, SendInputSynthesizer,
// Win32System, Win32MonitorLister, hotkey.NewWin32Registrar) resolves to a
// real Win32 implementation on windows and a harmless stub elsewhere, so the
// same wiring code runs in both.
func buildEngine(dir string) (*engine.Engine, engine.Deps, error) {
	cfgPath := filepath.Join(dir, "config.json")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, engine.Deps{}, fmt.Errorf("load config: %w", err)
	}

	j, err := journal.Open(dir)
	if err != nil {
		return nil, engine.Deps{}, fmt.Errorf("open journal: %w", err)
	}

	memStore, err := memory.NewStore(dir)
	if err != nil {
		return nil, engine.Deps{}, fmt.Errorf("open memory store: %w", err)
	}
	recorder, err := memory.NewRecorder(dir)
	if err != nil {
		return nil, engine.Deps{}, fmt.Errorf("open workflow recorder: %w", err)
	}

	focusGuard := focus.New()
	windowSys := window.New(window.Win32System{}, focusGuard)
	uiaAccessor := uia.New(uia.WindowWalker{})
	capSub := capture.New(capture.GDIGrabber{}, cfg.Automation.ScreenshotQuality)
	ocrEngine := ocr.New(ocr.NewNativeBackend("", "eng"), ocr.NewTesseractBackend("tesseract", "eng"))
	inputSynth := input.SendInputSynthesizer{}
	uiaInvoker := uia.Invoker{}
	resolver := resolve.New(uiaAccessor, capSub, ocrEngine, j, uiaInvoker, inputSynth)
	inputDispatcher := input.New(inputSynth, uiaAccessor, uiaInvoker, j)
	bgManager := background.New(background.Win32MonitorLister{}, windowSys)

	safetyEngine := safety.New(cfg)
	redactor := redact.New(cfg)
	adaptive := memory.NewAdaptive()

	scheduler := schedule.New(func(command string) (bool, string) {
		result := safetyEngine.Approve("run_command", "", map[string]any{"command": command})
		return result.Approved, result.Reason
	}, safetyEngine.IsKilled)

	devtoolsBridge := devtools.New(devtoolsPortLow, devtoolsPortHigh)
	watchRegistry := watch.New()
	scraperEngine := scraper.New(0)

	audioDir := filepath.Join(dir, "audio")
	audioCapturer := audio.NewCapturer("warden-audio-capture")
	transcriber := audio.NewTranscriber("warden-whisper-helper")
	ttsEngine := audio.NewTTS(audioDir, "warden-tts-online", "warden-tts-offline", audio.NewMCIPlayer())
	voiceUnit := audio.NewVoiceUnit(audioCapturer, transcriber, focusGuard, inputDispatcher, audioDir, "base", safetyEngine.IsKilled)

	hotkeyManager := hotkey.New(hotkey.NewWin32Registrar())

	// No sandboxed applications ship by default; operators register their
	// own Factory per target app. An empty map means run_app_script always
	// rejects with an unknown-app error until configured.
	sandboxRunner := sandbox.New(map[string]sandbox.Factory{})

	deps := engine.Deps{
		UIA:      uiaAccessor,
		Capture:  capSub,
		OCR:      ocrEngine,
		Resolver: resolver,
		Input:    inputDispatcher,
		Windows:  windowSys,
		System:   system.New(system.NewLauncher()),
		Devtools: devtoolsBridge,
		Watch:    watchRegistry,
		Schedule: scheduler,
		Journal:  j,
		Redact:   redactor,
		Focus:    focusGuard,
		Safety:   safetyEngine,
		Config:   cfg,
		Sandbox:  sandboxRunner,

		MemoryStore: memStore,
		Workflow:    recorder,
		Adaptive:    adaptive,

		Background: bgManager,
		Hotkeys:    hotkeyManager,

		AudioCapturer:    audioCapturer,
		Transcriber:      transcriber,
		TTS:              ttsEngine,
		VoiceUnit:        voiceUnit,
		AudioDir:         audioDir,
		WhisperHelperBin: "warden-whisper-helper",

		Scraper: scraperEngine,
	}

	registry := tools.NewRegistry()
	if err := engine.RegisterAll(registry, deps); err != nil {
		return nil, engine.Deps{}, fmt.Errorf("register tools: %w", err)
	}

	eng := &engine.Engine{
		Registry:   registry,
		Safety:     safetyEngine,
		Redactor:   redactor,
		Focus:      focusGuard,
		Adaptive:   adaptive,
		Workflow:   recorder,
		Background: bgManager,
		Windows:    windowSys,
		Config:     cfg,
	}
	return eng, deps, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "engine configuration directory (default: ~/.warden)")

	rootCmd.AddCommand(serveCmd, versionCmd, diagnosticsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
