// Command qdem rewrites one or more Quake/QuakeWorld demo files: it can
// reconstruct gameplay stats across a chain of maps, reconcile pickups
// between co-op viewpoints, and apply independent cleanup and cinematic
// transforms, writing each result as a sibling "_out.dem" file.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/qdemtools/qdem/cinematic"
	"github.com/qdemtools/qdem/cleanup"
	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/fixup"
	"github.com/qdemtools/qdem/internal/qlog"
	"github.com/qdemtools/qdem/protocol"
	"github.com/qdemtools/qdem/smoothing"
	"github.com/qdemtools/qdem/spawnparams"
)

type options struct {
	FadeIn                    float64  `long:"fadein" default:"0" description:"fade in from black over N seconds at the start of each demo"`
	FadeOut                   float64  `long:"fadeout" default:"0" description:"fade to black over N seconds at the end of each demo"`
	FixIntermissionLag        bool     `long:"fix-intermission-lag" description:"re-anchor an intermission that starts a frame late due to recording lag"`
	FixIntermissionTransition bool     `long:"fix-intermission-transition" description:"move the intermission message onto the frame its view-angle snap belongs to"`
	InstantSkinColor          bool     `long:"instant-skin-color" description:"force a skin-color change to render on the frame it happens, not the entity's next scheduled update"`
	RemoveGrenadeCounter      bool     `long:"remove-grenade-counter" description:"strip a mod's center-print grenade-count HUD overlay"`
	RemovePauses              bool     `long:"remove-pauses" description:"strip recorded pauses, holding entity state steady across them"`
	RemovePrints              []string `long:"remove-prints" description:"strip print messages containing this text (repeatable)"`
	RemoveSounds              []string `long:"remove-sounds" description:"strip sounds whose precached name contains this text (repeatable)"`
	SmoothViewAngles          bool     `long:"smooth-viewangles" description:"smooth jitter out of the recorded yaw/pitch series"`
	CutAfterKind              string   `long:"cut-after-kind" choice:"intermission" choice:"finale" description:"which end-of-game message to measure the cut from"`
	CutAfterDuration          float64  `long:"cut-after-duration" description:"seconds of tail to keep after cut-after-kind"`
	ReplaceSound              []string `long:"replace-sound" description:"OLD=NEW precache path substitution for sounds (repeatable)"`
	ReplaceWeaponModel        []string `long:"replace-weaponmodel" description:"OLD=NEW precache path substitution for the view-weapon model (repeatable)"`
	AddRunes                  []int    `long:"add-rune" description:"OR in the SIGIL<N> item flag across the whole demo (repeatable, 1-4)"`
	Merge                     bool     `long:"merge" description:"fold every --coop group's EntityUpdates into the primary demos before writing"`
	Stats                     bool     `long:"stats" description:"reconstruct stats across a chain of maps, reconciling pickups between co-op viewpoints"`
	Spawnparams               bool     `long:"spawnparams" description:"write a sibling .cfg of setspawnparam commands from each chain's final stats"`
	Coop                      []string `long:"coop" description:"comma-separated demo paths for one additional co-op player, aligned by position with the primary demo list (repeatable)"`
	Verbose                   bool     `long:"verbose" short:"v" description:"log info-level progress, not just warnings"`

	Args struct {
		Demos []string `positional-arg-name:"demo" required:"1" description:"path to an input demo file, one per map in chain order"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "qdem"
	parser.LongDescription = "Parses, reconstructs, and rewrites Quake/QuakeWorld demo files."

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	level := zerolog.WarnLevel
	if opts.Verbose {
		level = zerolog.InfoLevel
	}
	qlog.SetLogger(qlog.NewZerolog(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()))

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "qdem:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	pathsPerPlayer, err := buildPathsPerPlayer(opts)
	if err != nil {
		return err
	}

	demosPerPlayer := make([][]*demo.Demo, len(pathsPerPlayer))
	for i, paths := range pathsPerPlayer {
		for _, path := range paths {
			d, err := parseDemoFile(path)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			demosPerPlayer[i] = append(demosPerPlayer[i], d)
		}
	}

	isCoop := len(opts.Coop) > 0

	if opts.Stats {
		if err := applyStatsChain(demosPerPlayer, isCoop); err != nil {
			return err
		}
	}

	if opts.Spawnparams {
		for i, chain := range demosPerPlayer {
			cfgPath := strings.TrimSuffix(pathsPerPlayer[i][0], filepath.Ext(pathsPerPlayer[i][0])) + "_end.cfg"
			if err := writeSpawnparamsCfg(cfgPath, chain); err != nil {
				return err
			}
		}
	}

	demoPaths, demos := flatten(pathsPerPlayer, demosPerPlayer)

	if opts.Merge {
		if err := mergeCoopGroups(demosPerPlayer); err != nil {
			return err
		}
	}

	for _, d := range demos {
		if err := applyTransforms(d, opts); err != nil {
			return err
		}
	}

	for i, d := range demos {
		if err := writeDemoFile(demoPaths[i], d); err != nil {
			return err
		}
	}

	return nil
}

// buildPathsPerPlayer turns the positional demo list plus repeatable --coop
// groups into one []string per player, each holding that player's demo path
// for every map in chain order (§4.8, §6 CLI, grounded on pydem/cli.py's
// foreach_player_paths / paths_per_player transposition).
func buildPathsPerPlayer(opts options) ([][]string, error) {
	groups := [][]string{opts.Args.Demos}
	for _, raw := range opts.Coop {
		groups = append(groups, strings.Split(raw, ","))
	}
	for _, g := range groups[1:] {
		if len(g) != len(groups[0]) {
			return nil, fmt.Errorf("--coop group has %d demos, want %d to match the primary demo list", len(g), len(groups[0]))
		}
	}
	return groups, nil
}

func flatten(pathsPerPlayer [][]string, demosPerPlayer [][]*demo.Demo) ([]string, []*demo.Demo) {
	var paths []string
	var demos []*demo.Demo
	for i := range pathsPerPlayer {
		paths = append(paths, pathsPerPlayer[i]...)
		demos = append(demos, demosPerPlayer[i]...)
	}
	return paths, demos
}

func parseDemoFile(path string) (*demo.Demo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	state := protocol.Default()
	return demo.Parse(data, &state)
}

func writeDemoFile(path string, d *demo.Demo) error {
	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + "_out.dem"
	state := protocol.Default()
	return os.WriteFile(outPath, demo.Write(d, &state), 0644)
}

// applyStatsChain reconstructs stats map by map: each map's starting stats
// are every player's NextMap derivation of their previous map's final stats
// (§4.8, §4.13, grounded on pydem/cli.py's demo_previous_per_player loop).
func applyStatsChain(demosPerPlayer [][]*demo.Demo, isCoop bool) error {
	numMaps := len(demosPerPlayer[0])
	previous := make([]*demo.Demo, len(demosPerPlayer))
	for p := range demosPerPlayer {
		previous[p] = demosPerPlayer[p][0]
	}

	for m := 1; m < numMaps; m++ {
		startStats := make([]*demo.ClientStats, len(demosPerPlayer))
		for p := range demosPerPlayer {
			startStats[p] = spawnparams.NextMap(previous[p].GetFinalClientStats())
		}
		current := make([]*demo.Demo, len(demosPerPlayer))
		for p := range demosPerPlayer {
			current[p] = demosPerPlayer[p][m]
		}
		qlog.Info("reconstructing stats", qlog.F("map", m))
		if err := fixup.ApplyNewStartStats(startStats, current, isCoop); err != nil {
			return fmt.Errorf("map %d: %w", m, err)
		}
		previous = current
	}
	return nil
}

func writeSpawnparamsCfg(path string, chain []*demo.Demo) error {
	if len(chain) == 0 {
		return nil
	}
	lines, err := spawnparams.RenderAll([]*demo.ClientStats{chain[len(chain)-1].GetFinalClientStats()})
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// mergeCoopGroups folds every non-primary player's demos into the primary
// player's corresponding map, map by map (§4.11.2).
func mergeCoopGroups(demosPerPlayer [][]*demo.Demo) error {
	if len(demosPerPlayer) < 2 {
		return nil
	}
	numMaps := len(demosPerPlayer[0])
	for m := 0; m < numMaps; m++ {
		group := make([]*demo.Demo, len(demosPerPlayer))
		for p := range demosPerPlayer {
			group[p] = demosPerPlayer[p][m]
		}
		if _, err := cinematic.Merge(group); err != nil {
			return fmt.Errorf("merging map %d: %w", m, err)
		}
	}
	return nil
}

func parseReplacementPairs(raw []string) ([]cleanup.ReplacementPair, error) {
	var pairs []cleanup.ReplacementPair
	for _, r := range raw {
		old, newPath, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("replacement %q must be OLD=NEW", r)
		}
		pairs = append(pairs, cleanup.ReplacementPair{Old: old, New: newPath})
	}
	return pairs, nil
}

func applyTransforms(d *demo.Demo, opts options) error {
	if opts.FixIntermissionLag {
		if err := cleanup.FixIntermissionLag(d); err != nil {
			return err
		}
	}
	if opts.FixIntermissionTransition {
		cleanup.FixIntermissionTransition(d)
	}
	if opts.InstantSkinColor {
		cleanup.InstantSkinColor(d)
	}
	if opts.RemoveGrenadeCounter {
		cleanup.RemoveGrenadeCounter(d)
	}
	if opts.RemovePauses {
		cleanup.RemovePauses(d)
	}
	if len(opts.RemovePrints) > 0 {
		cleanup.RemovePrints(d, opts.RemovePrints)
	}
	if len(opts.RemoveSounds) > 0 {
		if err := cleanup.RemoveSounds(d, opts.RemoveSounds); err != nil {
			return err
		}
	}
	if opts.SmoothViewAngles {
		smoothing.SmoothViewAngles(d)
	}
	if len(opts.ReplaceSound) > 0 {
		pairs, err := parseReplacementPairs(opts.ReplaceSound)
		if err != nil {
			return err
		}
		if err := cleanup.ReplaceSound(d, pairs); err != nil {
			return err
		}
	}
	if len(opts.ReplaceWeaponModel) > 0 {
		pairs, err := parseReplacementPairs(opts.ReplaceWeaponModel)
		if err != nil {
			return err
		}
		if err := cleanup.ReplaceWeaponModel(d, pairs); err != nil {
			return err
		}
	}
	if len(opts.AddRunes) > 0 {
		if err := fixup.AddRunes(d, opts.AddRunes); err != nil {
			return err
		}
	}
	if opts.CutAfterKind != "" {
		end := cleanup.EndIntermission
		if opts.CutAfterKind == "finale" {
			end = cleanup.EndFinale
		}
		if err := cleanup.CutEndAfter(d, float32(opts.CutAfterDuration), end); err != nil {
			return err
		}
	}
	if opts.FadeIn > 0 {
		if err := cinematic.FadeIn(d, float32(opts.FadeIn)); err != nil {
			return err
		}
	}
	if opts.FadeOut > 0 {
		if err := cinematic.FadeOut(d, float32(opts.FadeOut)); err != nil {
			return err
		}
	}
	return nil
}
