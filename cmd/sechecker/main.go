package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sepolicy/sechecker/internal/checker"
	_ "github.com/sepolicy/sechecker/internal/checks"
	"github.com/sepolicy/sechecker/internal/expand"
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
	"github.com/spf13/cobra"
)

var (
	profilePath     string
	moduleFlags     []string
	fcfilePath      string
	optDefaultsPath string
	quiet           bool
	short           bool
	verbose         bool
	minSevFlag      string
	listModules     bool
	helpModule      string
	showVersion     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sechecker POLICY [MODULE_FILE...]",
		Short: "Run offline analysis modules against an already-built SELinux policy",
		Long: `sechecker drives the checker framework's analysis modules against a
policy this toolkit has already loaded (policy compilation, kernel
loading, and enforcement are all out of scope: this reads a policy,
never builds or loads one).

POLICY and any MODULE_FILE arguments are this toolkit's own JSON policy
documents (see internal/policy.JSONImage); a production binary-policy
loader is not part of this repo.`,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		RunE:                  run,
	}

	rootCmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Run the modules named in this profile XML file")
	rootCmd.Flags().StringArrayVarP(&moduleFlags, "module", "m", nil, "Run this module (repeatable)")
	rootCmd.Flags().StringVar(&fcfilePath, "fcfile", "", "Path to a file_contexts list")
	rootCmd.Flags().StringVar(&optDefaultsPath, "option-defaults", "", "Path to a YAML sidecar of per-module option defaults")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-module detail, header only")
	rootCmd.Flags().BoolVarP(&short, "short", "s", false, "Omit entries, print counts only")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print descriptions, options, and proofs")
	rootCmd.Flags().StringVar(&minSevFlag, "min-sev", "low", "Minimum severity to report: low|med|high")
	rootCmd.Flags().BoolVarP(&listModules, "list", "l", false, "List every registered module and exit")
	// The original CLI surface calls for "-h[=MODULE]"; cobra reserves -h
	// for its own --help. --help-module carries the same per-module help
	// this toolkit's own -h would, without fighting cobra's help flag.
	rootCmd.Flags().StringVar(&helpModule, "help-module", "", "Print one module's requirements/recommendations/options and exit")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false, "Print version information and exit")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Printf("sechecker (checker framework %s)\n", checker.FrameworkVersion)
		return nil
	}
	if listModules {
		for _, name := range checker.Names() {
			fmt.Println(name)
		}
		return nil
	}
	if helpModule != "" {
		return printModuleHelp(helpModule)
	}

	minSev, err := checker.ParseSeverity(minSevFlag)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return fmt.Errorf("%w: a policy document path is required", policy.ErrInput)
	}
	pol, err := loadPolicy(args)
	if err != nil {
		return err
	}

	var fcList *fscontext.List
	if fcfilePath != "" {
		f, err := os.Open(fcfilePath)
		if err != nil {
			return fmt.Errorf("%w: opening fcfile: %v", policy.ErrInput, err)
		}
		defer f.Close()
		fcList, err = fscontext.Load(f, pol)
		if err != nil {
			return err
		}
	}

	reports, modeOf, err := runSelectedModules(pol, fcList)
	if err != nil {
		return err
	}

	report := checker.NewReport(reports, minSev)
	report.ModeOf = modeOf
	text, err := report.Render(pol, fcList)
	if err != nil {
		return err
	}
	fmt.Print(text)

	if report.HasFindings() {
		os.Exit(1)
	}
	return nil
}

// runSelectedModules resolves -m/-p (and, for -p, an optional
// --option-defaults sidecar) and runs the selected modules, returning the
// reports plus a per-module OutputMode lookup for Report.ModeOf. A bare
// -m selection uses one uniform OutputMode derived from -q/-s/-v; a
// profile's per-module <module output=...> wins for that selection.
func runSelectedModules(pol *policy.Model, fc *fscontext.List) ([]*checker.ModuleReport, func(string) checker.OutputMode, error) {
	if profilePath != "" {
		f, err := os.Open(profilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: opening profile: %v", policy.ErrInput, err)
		}
		defer f.Close()
		prof, err := checker.LoadProfile(f)
		if err != nil {
			return nil, nil, err
		}

		var sidecar map[string]map[string][]string
		if optDefaultsPath != "" {
			sf, err := os.Open(optDefaultsPath)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: opening option-defaults: %v", policy.ErrInput, err)
			}
			defer sf.Close()
			sidecar, err = checker.LoadOptionDefaults(sf)
			if err != nil {
				return nil, nil, err
			}
		}

		mods, modeOf, err := checker.ApplyProfile(prof, sidecar)
		if err != nil {
			return nil, nil, err
		}
		reports, err := checker.RunModules(mods, pol, fc)
		return reports, func(name string) checker.OutputMode { return modeOf[name] }, err
	}

	if len(moduleFlags) == 0 {
		return nil, nil, fmt.Errorf("%w: no modules selected: pass -m or -p", policy.ErrInput)
	}
	mode := uniformOutputMode()
	reports, err := checker.Run(moduleFlags, pol, fc)
	return reports, func(string) checker.OutputMode { return mode }, err
}

func uniformOutputMode() checker.OutputMode {
	switch {
	case quiet:
		return checker.OutputQuiet
	case short:
		return checker.OutputShort
	case verbose:
		return checker.OutputVerbose
	default:
		return checker.OutputDefault
	}
}

func loadPolicy(paths []string) (*policy.Model, error) {
	base, err := readJSONImage(paths[0])
	if err != nil {
		return nil, err
	}
	for _, p := range paths[1:] {
		extra, err := readJSONImage(p)
		if err != nil {
			return nil, err
		}
		mergeJSONImage(base, extra)
	}
	return expand.Load(base)
}

func readJSONImage(path string) (*policy.JSONImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", policy.ErrInput, path, err)
	}
	defer f.Close()
	return policy.LoadJSONImage(f)
}

// mergeJSONImage folds extra's tables into base, for the "base policy
// followed by module files" positional-argument form (spec.md §6).
// Scalars (version, MLS flag, capability flags) come from base only.
func mergeJSONImage(base, extra *policy.JSONImage) {
	base.Types = append(base.Types, extra.Types...)
	for k, v := range extra.AttributeMap {
		base.AttributeMap[k] = append(base.AttributeMap[k], v...)
	}
	base.Roles = append(base.Roles, extra.Roles...)
	base.Users = append(base.Users, extra.Users...)
	base.Classes = append(base.Classes, extra.Classes...)
	base.Commons = append(base.Commons, extra.Commons...)
	for k, v := range extra.Booleans {
		base.Booleans[k] = v
	}
	base.AVRules = append(base.AVRules, extra.AVRules...)
	base.TERules = append(base.TERules, extra.TERules...)
	base.RoleAllows = append(base.RoleAllows, extra.RoleAllows...)
	base.RoleTransitions = append(base.RoleTransitions, extra.RoleTransitions...)
	base.RangeTrans = append(base.RangeTrans, extra.RangeTrans...)
	for k, v := range extra.UserRoles {
		base.UserRoles[k] = append(base.UserRoles[k], v...)
	}
	for k, v := range extra.RoleTypesMap {
		base.RoleTypesMap[k] = append(base.RoleTypesMap[k], v...)
	}
	for k, v := range extra.UserRanges {
		base.UserRanges[k] = v
	}
	base.InitialSIDs = append(base.InitialSIDs, extra.InitialSIDs...)
	base.Conditionals = append(base.Conditionals, extra.Conditionals...)
	base.FSUse = append(base.FSUse, extra.FSUse...)
	base.Genfscon = append(base.Genfscon, extra.Genfscon...)
	base.Portcon = append(base.Portcon, extra.Portcon...)
	base.Netifcon = append(base.Netifcon, extra.Netifcon...)
	base.Nodecon = append(base.Nodecon, extra.Nodecon...)
	base.Constraints = append(base.Constraints, extra.Constraints...)
	base.ValidateTrans = append(base.ValidateTrans, extra.ValidateTrans...)
}

func printModuleHelp(name string) error {
	mod, err := checker.New(name)
	if err != nil {
		return err
	}
	fmt.Printf("Module: %s\n", mod.Name())
	fmt.Printf("Severity: %s\n", mod.Severity())
	fmt.Printf("Summary: %s\n", mod.Summary())
	fmt.Printf("Description: %s\n", mod.Description())
	if reqs := mod.Requirements(); len(reqs) > 0 {
		var names []string
		for _, r := range reqs {
			names = append(names, r.Description)
		}
		fmt.Printf("Requires: %s\n", strings.Join(names, "; "))
	}
	if recs := mod.Recommendations(); len(recs) > 0 {
		var names []string
		for _, r := range recs {
			names = append(names, r.Description)
		}
		fmt.Printf("Recommends: %s\n", strings.Join(names, "; "))
	}
	if deps := mod.Dependencies(); len(deps) > 0 {
		fmt.Printf("Depends on: %s\n", strings.Join(deps, ", "))
	}
	for name, opt := range mod.Options() {
		fmt.Printf("Option %s (%s): default %s\n", name, opt.Description, strings.Join(opt.Default, ", "))
	}
	return nil
}
