// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/nextkit/scaffold/internal/config"
	"github.com/nextkit/scaffold/internal/errdef"
	"github.com/nextkit/scaffold/internal/layout"
	"github.com/nextkit/scaffold/internal/pkgjson"
	"github.com/nextkit/scaffold/internal/prompt"
	"github.com/nextkit/scaffold/internal/resolver"
	"github.com/nextkit/scaffold/internal/runner"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPipeline(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pipeline")
}

const generatedPackageJSON = `{
  "name": "demo",
  "version": "0.1.0",
  "private": true,
  "scripts": {
    "dev": "next dev",
    "build": "next build"
  },
  "dependencies": {
    "next": "15.0.0"
  }
}
`

const generatedLayout = `import type { Metadata } from "next";
import "./globals.css";

export default function RootLayout({ children }: { children: React.ReactNode }) {
  return <html><body>{children}</body></html>;
}
`

// fakeGenerator writes what create-next-app would into <dir>/<name>
func fakeGenerator(withStylesheet bool) runner.Handler {
	return func(_ context.Context, cmd runner.Command) (runner.ExitStatus, error) {
		root := filepath.Join(cmd.Dir, cmd.Args[1])
		app := filepath.Join(root, "src", "app")

		err := os.MkdirAll(app, 0755)
		if err != nil {
			return runner.ExitStatus{}, err
		}

		files := map[string]string{
			filepath.Join(root, "package.json"): generatedPackageJSON,
			filepath.Join(app, "layout.tsx"):    generatedLayout,
		}
		if withStylesheet {
			files[filepath.Join(app, "globals.css")] = "body { margin: 0; }\n"
		}

		for f, c := range files {
			err = os.WriteFile(f, []byte(c), 0644)
			if err != nil {
				return runner.ExitStatus{}, err
			}
		}

		fmt.Fprintln(cmd.Stdout, "Success! Created demo")

		return runner.ExitStatus{}, nil
	}
}

func readFile(parts ...string) string {
	content, err := os.ReadFile(filepath.Join(parts...))
	Expect(err).ToNot(HaveOccurred())
	return string(content)
}

var _ = Describe("Pipeline", func() {
	var (
		workDir string
		rec     *runner.Recorder
		canned  *prompt.Canned
		cfg     *config.Config
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
		ctx     context.Context
	)

	BeforeEach(func() {
		workDir = GinkgoT().TempDir()
		rec = runner.NewRecorder().
			Respond("node", "v20.11.1\n", 0).
			Respond("npm", "10.2.4\n", 0).
			Handle("npx", fakeGenerator(true))
		canned = &prompt.Canned{}
		cfg = config.Default()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		ctx = context.Background()
	})

	deps := func() Deps {
		return Deps{
			Runner:   rec,
			Prompter: canned,
			Stdin:    strings.NewReader(""),
			Stdout:   stdout,
			Stderr:   stderr,
		}
	}

	project := func(name string) (*State, error) {
		st := NewState(resolver.Invocation{Mode: resolver.ModeProject, Name: name}, cfg, workDir)
		return st, Project(deps()).Run(ctx, st)
	}

	feature := func(name string, dryRun bool) (*State, error) {
		st := NewState(resolver.Invocation{Mode: resolver.ModeFeature, Name: name}, cfg, workDir)
		st.DryRun = dryRun
		return st, Feature(deps()).Run(ctx, st)
	}

	Describe("Steps", func() {
		It("Should order the project and feature steps", func() {
			Expect(Project(Deps{}).Steps()).To(Equal([]string{
				"runtime", "target", "generator", "directories", "templates", "feature placeholder",
				"relocate", "install", "manifest", "workflows", "summary",
			}))
			Expect(Feature(Deps{}).Steps()).To(Equal([]string{"target", "directories", "templates", "summary"}))
			Expect(For(resolver.ModeFeature, Deps{}).Steps()).To(HaveLen(4))
		})
	})

	Describe("Project", func() {
		It("Should scaffold a complete project", func() {
			canned.Confirmations = []bool{true}

			st, err := project("demo")
			Expect(err).ToNot(HaveOccurred())

			root := filepath.Join(workDir, "demo")
			Expect(st.Root).To(Equal(root))

			for _, d := range []string{"components", "features", "hooks", "lib", "providers", "queries", "services", "store", "styles", "types", "__tests__"} {
				Expect(filepath.Join(root, "src", d)).To(BeADirectory())
			}

			placeholder := filepath.Join(root, "src", "features", "[feature-name]")
			entries, err := os.ReadDir(placeholder)
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(HaveLen(8))
			Expect(readFile(placeholder, "README.md")).To(HavePrefix("# [feature-name]\n"))

			Expect(filepath.Join(root, "src", "app", "globals.css")).ToNot(BeAnExistingFile())
			Expect(readFile(root, "src", "styles", "globals.css")).To(Equal("body { margin: 0; }\n"))
			Expect(readFile(root, "src", "app", "layout.tsx")).To(ContainSubstring(`import "@/styles/globals.css";`))
			Expect(st.Relocated).To(BeTrue())

			Expect(readFile(root, "README.md")).To(HavePrefix("# demo\n"))
			Expect(readFile(root, ".prettierrc")).To(ContainSubstring("prettier-plugin-tailwindcss"))
			Expect(filepath.Join(root, ".prettierignore")).To(BeAnExistingFile())
			Expect(readFile(root, "jest.config.ts")).To(ContainSubstring(`"^@/(.*)$": "<rootDir>/src/$1"`))
			Expect(filepath.Join(root, "vitest.config.ts")).ToNot(BeAnExistingFile())
			Expect(readFile(root, ".github", "workflows", "ci.yml")).To(ContainSubstring("run: npm ci"))

			pkg := readFile(root, "package.json")
			scripts, err := pkgjson.Scripts([]byte(pkg))
			Expect(err).ToNot(HaveOccurred())
			Expect(scripts).To(Equal(map[string]string{
				"dev":          "next dev",
				"build":        "next build",
				"format":       "prettier --write .",
				"format:check": "prettier --check .",
				"test":         "jest",
				"test:watch":   "jest --watch",
			}))
			Expect(pkg).To(ContainSubstring("\"dependencies\": {\n    \"next\": \"15.0.0\"\n  }"))
			Expect(strings.Index(pkg, `"name"`)).To(BeNumerically("<", strings.Index(pkg, `"scripts"`)))
			Expect(strings.Index(pkg, `"scripts"`)).To(BeNumerically("<", strings.Index(pkg, `"dependencies"`)))

			lines := rec.Lines()
			Expect(lines).To(HaveLen(4))
			Expect(lines[0]).To(Equal("node --version"))
			Expect(lines[1]).To(Equal("npm --version"))
			Expect(lines[2]).To(HavePrefix("npx create-next-app@latest demo --ts --eslint --tailwind --app --src-dir --import-alias"))
			Expect(lines[2]).To(HaveSuffix("--use-npm"))
			Expect(lines[3]).To(HavePrefix("npm install --save-dev prettier prettier-plugin-tailwindcss jest"))
			Expect(rec.Named("npx")[0].Dir).To(Equal(workDir))
			Expect(rec.Named("npm")[1].Dir).To(Equal(root))

			Expect(canned.Asked).To(Equal([]string{workflowsQuestion}))
			Expect(st.Changed).To(ContainElements("README.md", "package.json", "src/features/[feature-name]/README.md", ".github/workflows/ci.yml"))
			Expect(stdout.String()).To(ContainSubstring("Success! Created demo"))
			Expect(stdout.String()).To(ContainSubstring("Created project"))
		})

		It("Should honour disabled tooling", func() {
			cfg.Prettier = false
			cfg.TestRunner = config.TestRunnerNone
			cfg.Workflows = config.WorkflowsNever
			cfg.KeepFiles = true

			_, err := project("demo")
			Expect(err).ToNot(HaveOccurred())

			root := filepath.Join(workDir, "demo")
			Expect(filepath.Join(root, ".prettierrc")).ToNot(BeAnExistingFile())
			Expect(filepath.Join(root, "jest.config.ts")).ToNot(BeAnExistingFile())
			Expect(filepath.Join(root, "src", "__tests__")).ToNot(BeADirectory())
			Expect(filepath.Join(root, ".github")).ToNot(BeADirectory())
			Expect(filepath.Join(root, "src", "hooks", layout.KeepFile)).To(BeAnExistingFile())
			Expect(filepath.Join(root, "src", "features", layout.KeepFile)).ToNot(BeAnExistingFile())
			Expect(readFile(root, "package.json")).To(Equal(generatedPackageJSON))
			Expect(rec.Lines()).To(HaveLen(3))
			Expect(canned.Asked).To(BeEmpty())
		})

		It("Should skip a missing stylesheet", func() {
			rec.Handle("npx", fakeGenerator(false))
			cfg.SkipInstall = true

			st, err := project("demo")
			Expect(err).ToNot(HaveOccurred())
			Expect(st.Relocated).To(BeFalse())
			Expect(filepath.Join(workDir, "demo", "src", "styles", "globals.css")).ToNot(BeAnExistingFile())
			Expect(readFile(workDir, "demo", "src", "app", "layout.tsx")).To(Equal(generatedLayout))
			Expect(rec.Contains("install")).To(BeFalse())
			Expect(canned.Asked).To(HaveLen(1))
			Expect(filepath.Join(workDir, "demo", ".github")).ToNot(BeADirectory())
		})

		It("Should refuse an unsupported runtime before any change", func() {
			rec.Respond("node", "v16.20.0", 0)

			_, err := project("demo")
			Expect(errdef.Is(err, errdef.CodeUnsupportedRuntime)).To(BeTrue())
			Expect(rec.Named("npx")).To(BeEmpty())
			Expect(filepath.Join(workDir, "demo")).ToNot(BeADirectory())
		})

		It("Should skip the runtime check when configured", func() {
			rec.Missing("node")
			cfg.SkipRuntimeCheck = true
			cfg.Workflows = config.WorkflowsNever

			_, err := project("demo")
			Expect(err).ToNot(HaveOccurred())
			Expect(rec.Named("node")).To(BeEmpty())
		})

		It("Should keep an existing target unless confirmed", func() {
			existing := filepath.Join(workDir, "demo")
			Expect(os.MkdirAll(existing, 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(existing, "keep.txt"), []byte("x"), 0644)).To(Succeed())

			_, err := project("demo")
			Expect(errdef.Is(err, errdef.CodeTargetExists)).To(BeTrue())
			Expect(filepath.Join(existing, "keep.txt")).To(BeAnExistingFile())
			Expect(rec.Named("npx")).To(BeEmpty())
			Expect(canned.Asked).To(HaveLen(1))
			Expect(canned.Asked[0]).To(ContainSubstring("already exists"))
		})

		It("Should replace an existing target when confirmed", func() {
			existing := filepath.Join(workDir, "demo")
			Expect(os.MkdirAll(existing, 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(existing, "old.txt"), []byte("x"), 0644)).To(Succeed())
			canned.Confirmations = []bool{true, false}

			_, err := project("demo")
			Expect(err).ToNot(HaveOccurred())
			Expect(filepath.Join(existing, "old.txt")).ToNot(BeAnExistingFile())
			Expect(filepath.Join(existing, "package.json")).To(BeAnExistingFile())
		})

		It("Should never remove the working directory", func() {
			Expect(os.WriteFile(filepath.Join(workDir, "keep.txt"), []byte("x"), 0644)).To(Succeed())
			canned.Confirmations = []bool{true, true}

			_, err := project("..")
			Expect(errdef.Is(err, errdef.CodeInvalidName)).To(BeTrue())
			Expect(filepath.Join(workDir, "keep.txt")).To(BeAnExistingFile())
			Expect(canned.Asked).To(BeEmpty())
			Expect(rec.Named("npx")).To(BeEmpty())
		})

		It("Should fail when the generator fails", func() {
			rec.Respond("npx", "", 1)

			_, err := project("demo")
			Expect(errdef.Is(err, errdef.CodeGeneratorFailure)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("exited with code 1")))
			Expect(filepath.Join(workDir, "demo")).ToNot(BeADirectory())
		})

		It("Should fail when the generator creates nothing", func() {
			rec.Respond("npx", "", 0)

			_, err := project("demo")
			Expect(errdef.Is(err, errdef.CodeGeneratorFailure)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("did not create")))
		})

		It("Should report install failures with their output", func() {
			rec.Handle("npm", func(_ context.Context, cmd runner.Command) (runner.ExitStatus, error) {
				if cmd.Args[0] == "--version" {
					fmt.Fprintln(cmd.Stdout, "10.2.4")
					return runner.ExitStatus{}, nil
				}
				fmt.Fprintln(cmd.Stderr, "npm ERR! network")
				return runner.ExitStatus{Code: 1}, nil
			})

			_, err := project("demo")
			Expect(errdef.Is(err, errdef.CodeInstallFailure)).To(BeTrue())
			Expect(stderr.String()).To(ContainSubstring("npm ERR! network"))
		})

		It("Should fail on an invalid package.json", func() {
			rec.Handle("npx", func(ctx context.Context, cmd runner.Command) (runner.ExitStatus, error) {
				status, err := fakeGenerator(true)(ctx, cmd)
				Expect(os.WriteFile(filepath.Join(cmd.Dir, "demo", "package.json"), []byte("[1,2]"), 0644)).To(Succeed())
				return status, err
			})

			_, err := project("demo")
			Expect(errdef.Is(err, errdef.CodeManifestParse)).To(BeTrue())
		})

		It("Should use the configured package manager", func() {
			cfg.PackageManager = config.PNPM
			cfg.Workflows = config.WorkflowsNever
			rec.Respond("pnpm", "9.0.0", 0)

			_, err := project("demo")
			Expect(err).ToNot(HaveOccurred())
			Expect(rec.Named("npx")[0].Args).To(ContainElement("--use-pnpm"))
			Expect(rec.Named("pnpm")).To(HaveLen(2))
			Expect(rec.Named("pnpm")[1].Args[:2]).To(Equal([]string{"add", "-D"}))
			Expect(readFile(workDir, "demo", "README.md")).To(ContainSubstring("pnpm run dev"))
		})

		It("Should add the workflow for the configured package manager", func() {
			cfg.PackageManager = config.PNPM
			cfg.Workflows = config.WorkflowsAlways
			rec.Respond("pnpm", "9.0.0", 0)

			st, err := project("demo")
			Expect(err).ToNot(HaveOccurred())
			Expect(st.Workflows).To(Equal([]string{".github/workflows/ci.yml"}))
			Expect(canned.Asked).To(BeEmpty())

			ci := readFile(workDir, "demo", ".github", "workflows", "ci.yml")
			Expect(ci).To(ContainSubstring("run: pnpm install --frozen-lockfile"))
			Expect(ci).To(ContainSubstring("cache: pnpm"))
			Expect(ci).ToNot(ContainSubstring("npm ci"))
		})

		It("Should fail when no workflow exists for the package manager", func() {
			cfg.Workflows = config.WorkflowsAlways
			d := deps()
			d.Workflows = fstest.MapFS{"pnpm/.github/workflows/ci.yml": &fstest.MapFile{Data: []byte("name: CI\n")}}

			st := NewState(resolver.Invocation{Mode: resolver.ModeProject, Name: "demo"}, cfg, workDir)
			err := Project(d).Run(ctx, st)
			Expect(errdef.Is(err, errdef.CodeFilesystem)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("no workflows available for npm")))
			Expect(filepath.Join(workDir, "demo", ".github")).ToNot(BeADirectory())
		})

		It("Should stop when the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			st := NewState(resolver.Invocation{Name: "demo"}, cfg, workDir)
			err := Project(deps()).Run(cctx, st)
			Expect(err).To(MatchError(context.Canceled))
			Expect(rec.Invocations).To(BeEmpty())
		})
	})

	Describe("Feature", func() {
		It("Should create exactly seven folders and a README", func() {
			st, err := feature("auth", false)
			Expect(err).ToNot(HaveOccurred())

			root := filepath.Join(workDir, "src", "features", "auth")
			Expect(st.Root).To(Equal(root))

			dirs, err := layout.Directories(root)
			Expect(err).ToNot(HaveOccurred())
			Expect(dirs).To(ConsistOf("components", "containers", "hooks", "services", "queries", "types", "data"))

			readme := readFile(root, "README.md")
			Expect(readme).To(HavePrefix("# auth\n"))
			Expect(readme).To(ContainSubstring("@/features/auth"))

			entries, err := os.ReadDir(root)
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(HaveLen(8))

			Expect(rec.Invocations).To(BeEmpty())
			Expect(canned.Asked).To(BeEmpty())
			Expect(stdout.String()).To(ContainSubstring("Created feature"))
		})

		It("Should be idempotent and merge into existing features", func() {
			_, err := feature("auth", false)
			Expect(err).ToNot(HaveOccurred())

			root := filepath.Join(workDir, "src", "features", "auth")
			Expect(os.WriteFile(filepath.Join(root, "hooks", "useAuth.ts"), []byte("export {}"), 0644)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(root, "README.md"), []byte("edited"), 0644)).To(Succeed())

			st, err := feature("auth", false)
			Expect(err).ToNot(HaveOccurred())
			Expect(st.Directories.Created).To(BeEmpty())
			Expect(st.Directories.Existed).To(HaveLen(7))
			Expect(readFile(root, "hooks", "useAuth.ts")).To(Equal("export {}"))
			Expect(readFile(root, "README.md")).To(HavePrefix("# auth\n"))
		})

		It("Should only plan in dry run mode", func() {
			st, err := feature("auth", true)
			Expect(err).ToNot(HaveOccurred())

			Expect(filepath.Join(workDir, "src")).ToNot(BeADirectory())
			Expect(st.PlannedDirectories).To(HaveLen(7))
			Expect(st.PlannedFiles).To(HaveLen(1))
			Expect(st.PlannedFiles[0].Path).To(Equal("README.md"))
			Expect(stdout.String()).To(ContainSubstring("Planned changes for feature auth"))
			Expect(stdout.String()).To(ContainSubstring("src/features/auth/containers/"))
		})

		It("Should refuse feature names outside the features directory", func() {
			_, err := feature("../escape", false)
			Expect(errdef.Is(err, errdef.CodeInvalidName)).To(BeTrue())
			Expect(filepath.Join(workDir, cfg.SourceDirectory, "escape")).ToNot(BeADirectory())
		})

		It("Should fail when the feature path is a file", func() {
			Expect(os.MkdirAll(filepath.Join(workDir, "src", "features"), 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(workDir, "src", "features", "auth"), []byte("x"), 0644)).To(Succeed())

			_, err := feature("auth", false)
			Expect(errdef.Is(err, errdef.CodeFilesystem)).To(BeTrue())
		})

		It("Should use custom jet templates", func() {
			tdir := GinkgoT().TempDir()
			Expect(os.MkdirAll(filepath.Join(tdir, "feature"), 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(tdir, "feature", "index.ts"), []byte(`// {{ .Feature }} {{ purpose("hooks") }}`), 0644)).To(Succeed())
			cfg.TemplatesDirectory = tdir
			cfg.Engine = config.EngineJet

			_, err := feature("auth", false)
			Expect(err).ToNot(HaveOccurred())

			root := filepath.Join(workDir, "src", "features", "auth")
			Expect(readFile(root, "index.ts")).To(Equal("// auth React hooks"))
			Expect(filepath.Join(root, "README.md")).ToNot(BeAnExistingFile())
		})
	})

	Describe("importPath", func() {
		It("Should use the alias or a relative path", func() {
			c := config.Default()
			p, err := importPath(c, "/p/src", "/p/src/app", "/p/src/styles/globals.css")
			Expect(err).ToNot(HaveOccurred())
			Expect(p).To(Equal("@/styles/globals.css"))

			c.Generator.ImportAlias = ""
			p, err = importPath(c, "/p/src", "/p/src/app", "/p/src/styles/globals.css")
			Expect(err).ToNot(HaveOccurred())
			Expect(p).To(Equal("../styles/globals.css"))

			p, err = importPath(c, "/p/src", "/p/src/app", "/p/src/app/globals.css")
			Expect(err).ToNot(HaveOccurred())
			Expect(p).To(Equal("./globals.css"))
		})
	})
})
