package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lime-pipeline/limenaming/internal/app"
	"github.com/lime-pipeline/limenaming/internal/config"
	"github.com/lime-pipeline/limenaming/internal/domain"
	"github.com/lime-pipeline/limenaming/internal/filename"
	"github.com/lime-pipeline/limenaming/internal/infra/fsx"
	"github.com/lime-pipeline/limenaming/internal/scan"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "lint":
		if code := lintCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	case "reconcile":
		if code := reconcileCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

// lintCmd 扫描项目树并检查每个 .blend 文件名是否符合命名语法。
func lintCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printLintUsage()
			return 0
		}
	}

	ca, err := parseArgs(args, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printLintUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{Path: ca.Path})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	files, err := scan.ScanBlendFiles(eff.Path, eff.ExcludeDirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "扫描失败：%v\n", err)
		return 1
	}

	codec := filename.Codec{Policy: filename.Policy{
		SceneStep:          eff.SceneStep,
		FreeSceneNumbering: eff.FreeSceneNumbers,
	}}

	type lintItem struct {
		Path      string `json:"path"`
		OK        bool   `json:"ok"`
		ErrorCode string `json:"error_code,omitempty"`
		ErrorMsg  string `json:"error_msg,omitempty"`
	}
	items := make([]lintItem, 0, len(files))
	bad := 0
	for _, f := range files {
		it := lintItem{Path: f.RelPath, OK: true}
		if _, e := codec.Decode(f.Base); e != nil {
			it.OK = false
			it.ErrorCode = filename.ErrCode(e)
			it.ErrorMsg = e.Error()
			bad++
		}
		items = append(items, it)
	}

	if isTTY(os.Stdout) {
		for _, it := range items {
			if it.OK {
				continue
			}
			fmt.Fprintf(os.Stdout, "%s  %s: %s\n", it.Path, it.ErrorCode, it.ErrorMsg)
		}
		fmt.Fprintf(os.Stdout, "完成：files=%d violations=%d\n", len(items), bad)
	} else {
		// stdout 非 TTY：stdout 必须且仅输出一个 JSON（摘要走 stderr）。
		enc := json.NewEncoder(os.Stdout)
		_ = enc.Encode(struct {
			Files      int        `json:"files"`
			Violations int        `json:"violations"`
			Items      []lintItem `json:"items"`
		}{len(items), bad, items})
		fmt.Fprintf(os.Stderr, "完成：files=%d violations=%d\n", len(items), bad)
	}

	if bad > 0 {
		return 1
	}
	return 0
}

// reconcileCmd 读取批输入 JSON，执行验证→打分→裁决→解析，输出 RunReport。
func reconcileCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printReconcileUsage()
			return 0
		}
	}

	ca, err := parseArgs(args, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printReconcileUsage()
		return 2
	}
	if ca.Input == "" {
		fmt.Fprintf(os.Stderr, "参数错误：reconcile 需要 --input <batch.json>\n\n")
		printReconcileUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		Path:        ca.Path,
		Taxonomy:    ca.Taxonomy,
		TaxonomySet: ca.TaxonomySet,
		Apply:       ca.Apply,
		ApplySet:    ca.ApplySet,
	})
	if err != nil {
		emitReport(reportForConfigError(err))
		return 1
	}

	log := newLogger(ca.Verbose)
	defer func() { _ = log.Sync() }()

	sess, err := app.NewSession(eff, log)
	if err != nil {
		emitReport(reportForTaxonomyError(eff, err))
		return 1
	}

	in, err := app.LoadBatch(ca.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	progressW, interactive := pickProgressWriter()
	var obs app.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	rr := sess.Execute(in, obs)
	emitReport(rr)

	// apply 模式下把报告落盘，供上游工具（Blender 侧）消费。
	if eff.Apply {
		if err := writeReportFile(eff.Path, rr); err != nil {
			fmt.Fprintf(os.Stderr, "写入报告失败：%v\n", err)
			return 1
		}
	}

	if rr.Summary.Failed == 0 {
		return 0
	}
	return 1
}

func writeReportFile(root string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Join(root, "cache"), "report.json", b)
}

type cliArgs struct {
	Path  string
	Input string

	Taxonomy    string
	TaxonomySet bool

	Apply    bool
	ApplySet bool

	Verbose bool
}

func parseArgs(args []string, reconcileFlags bool) (cliArgs, error) {
	ca := cliArgs{}
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case reconcileFlags && a == "--input":
			if i+1 >= len(args) {
				return cliArgs{}, fmt.Errorf("--input 需要一个值")
			}
			i++
			ca.Input = args[i]
		case reconcileFlags && len(a) > 8 && a[:8] == "--input=":
			ca.Input = a[8:]
		case reconcileFlags && a == "--taxonomy":
			if i+1 >= len(args) {
				return cliArgs{}, fmt.Errorf("--taxonomy 需要一个值")
			}
			i++
			ca.Taxonomy = args[i]
			ca.TaxonomySet = true
		case reconcileFlags && len(a) > 11 && a[:11] == "--taxonomy=":
			ca.Taxonomy = a[11:]
			ca.TaxonomySet = true
		case reconcileFlags && a == "--apply":
			ca.Apply = true
			ca.ApplySet = true
		case reconcileFlags && a == "--apply=true":
			ca.Apply = true
			ca.ApplySet = true
		case reconcileFlags && a == "--apply=false":
			ca.Apply = false
			ca.ApplySet = true
		case a == "--verbose" || a == "-v":
			ca.Verbose = true
		case len(a) > 0 && a[0] == '-':
			return cliArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ca.Path != "" {
				return cliArgs{}, fmt.Errorf("重复的 path：%q 与 %q", ca.Path, a)
			}
			ca.Path = a
		}
	}
	return ca, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  limenaming lint [path]
  limenaming reconcile [path] --input <batch.json> [--taxonomy <file>] [--apply[=true|false]]

命令：
  lint       扫描 .blend 文件并检查文件名是否符合命名语法
  reconcile  验证外部命名提案并产出裁决报告（默认 dry-run）

使用 "limenaming <命令> --help" 查看详细说明。
`)
}

func printLintUsage() {
	fmt.Fprint(os.Stdout, `用法：
  limenaming lint [path] [-v|--verbose]

说明：
  path 缺省时读取 <cwd>/limenaming.json 的 path 字段。
  scene_step / free_scene_numbering / exclude_dirs 来自配置文件。
`)
}

func printReconcileUsage() {
	fmt.Fprint(os.Stdout, `用法：
  limenaming reconcile [path] --input <batch.json> [--taxonomy <file>] [--apply[=true|false]] [-v|--verbose]

参数：
  --input     批输入 JSON（items + proposals + universe + tree）
  --taxonomy  taxonomy YAML 文件（未指定则读配置文件；最终默认内置词表）
  --apply     对裁决做实际应用标记（默认 dry-run）；支持 --apply=false 覆盖配置
  -h, --help  显示帮助
`)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "完成：accepted=%d normalized=%d review=%d skipped=%d failed=%d\n",
			rr.Summary.Accepted, rr.Summary.Normalized, rr.Summary.Review, rr.Summary.Skipped, rr.Summary.Failed,
		)
		for _, it := range rr.Items {
			if it.Status != domain.StatusFailed && it.Status != domain.StatusReview {
				continue
			}
			key := it.ID
			if key == "" {
				key = "<batch>"
			}
			msg := it.Reason
			if it.ErrorMsg != "" {
				msg = it.ErrorCode + ": " + it.ErrorMsg
			}
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", key, it.Status, msg)
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：accepted=%d normalized=%d review=%d skipped=%d failed=%d\n",
		rr.Summary.Accepted, rr.Summary.Normalized, rr.Summary.Review, rr.Summary.Skipped, rr.Summary.Failed,
	)
}

func reportForConfigError(err error) domain.RunReport {
	code := config.Code(err)
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	now := time.Now().UTC()
	rr := domain.RunReport{
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func reportForTaxonomyError(eff config.EffectiveConfig, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		TaxonomyPath: eff.TaxonomyPath,
		StartedAt:    now,
		FinishedAt:   now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: domain.ErrCodeTaxonomyFailed,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

// newLogger 构造 CLI 日志器：一律写 stderr，verbose 时降到 Debug。
func newLogger(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
