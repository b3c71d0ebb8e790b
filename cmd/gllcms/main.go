// Command gllcms applies ICC profile and brightness, contrast, hue and
// saturation adjustments to images, on the CPU or on a Vulkan device.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kovidgoyal/gllcms"
	"github.com/kovidgoyal/gllcms/frames"
	"github.com/kovidgoyal/gllcms/prism/meta/icc"
	"github.com/kovidgoyal/gllcms/settingsfile"
	flag "github.com/spf13/pflag"
)

type options struct {
	config        string
	output        string
	dump_lut      string
	save_profile  string
	save_settings string
	use_gpu       bool
	verbose       bool
	version       bool
	settings      gllcms.Settings
}

func parse_args(args []string) (opts options, inputs []string, err error) {
	fs := flag.NewFlagSet("gllcms", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: gllcms [options] [input-file ...]")
		fs.PrintDefaults()
	}
	d := gllcms.DefaultSettings()
	fs.StringVar(&opts.settings.ICCProfilePath, "icc", "", "ICC profile describing the input colors")
	fs.Float64Var(&opts.settings.Brightness, "brightness", d.Brightness, "lightness offset in L* units")
	fs.Float64Var(&opts.settings.Contrast, "contrast", d.Contrast, "lightness scale around L* 50")
	fs.Float64Var(&opts.settings.Hue, "hue", d.Hue, "hue rotation in degrees")
	fs.Float64Var(&opts.settings.Saturation, "saturation", d.Saturation, "chroma offset")
	fs.StringVarP(&opts.config, "config", "c", "", "read settings from a TOML file, flags override it")
	fs.StringVarP(&opts.output, "output", "o", "", "output file, only valid with a single input")
	fs.StringVar(&opts.dump_lut, "dump-lut", "", "write the packed color table to this file")
	fs.StringVar(&opts.save_profile, "save-profile", "", "write the adjustments as an abstract ICC profile to this file")
	fs.StringVar(&opts.save_settings, "save-settings", "", "write the effective settings as TOML to this file")
	fs.BoolVar(&opts.use_gpu, "gpu", false, "filter frames on a Vulkan device")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	if err = fs.Parse(args); err != nil {
		return
	}
	inputs = fs.Args()
	if opts.output != "" && len(inputs) != 1 {
		return opts, nil, fmt.Errorf("--output needs exactly one input file")
	}
	if opts.config != "" {
		base, err := settingsfile.Load(opts.config)
		if err != nil {
			return opts, nil, err
		}
		// flags given on the command line take precedence over the file
		for _, x := range []struct {
			name     string
			dst, src *float64
		}{
			{"brightness", &base.Brightness, &opts.settings.Brightness},
			{"contrast", &base.Contrast, &opts.settings.Contrast},
			{"hue", &base.Hue, &opts.settings.Hue},
			{"saturation", &base.Saturation, &opts.settings.Saturation},
		} {
			if fs.Changed(x.name) {
				*x.dst = *x.src
			}
		}
		if fs.Changed("icc") {
			base.ICCProfilePath = opts.settings.ICCProfilePath
		}
		opts.settings = base
	}
	err = opts.settings.Validate()
	return
}

func output_path(input string, img *frames.Image) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if img.IsAnimated() {
		return base + "-gllcms.apng"
	}
	if _, err := frames.FormatFromExtension(ext); err != nil || strings.EqualFold(ext, ".webp") {
		ext = ".png"
	}
	return base + "-gllcms" + ext
}

func write_outputs(opts *options) error {
	s := opts.settings
	if opts.save_settings != "" {
		data, err := settingsfile.Encode(s)
		if err != nil {
			return err
		}
		if err = os.WriteFile(opts.save_settings, data, 0o666); err != nil {
			return err
		}
	}
	if opts.save_profile != "" {
		data, err := icc.BCHSWProfileData(gllcms.AbstractGridPoints, icc.BCHSW{
			Brightness: s.Brightness, Contrast: s.Contrast, Hue: s.Hue, Saturation: s.Saturation})
		if err != nil {
			return err
		}
		if err = os.WriteFile(opts.save_profile, data, 0o666); err != nil {
			return err
		}
	}
	if opts.dump_lut != "" {
		l, err := gllcms.DefaultBuilder(s)
		if err != nil {
			return err
		}
		f, err := os.Create(opts.dump_lut)
		if err != nil {
			return err
		}
		_, err = l.WriteTo(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func main() {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}()
	opts, inputs, err := parse_args(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			err = nil
		}
		return
	}
	if opts.version {
		fmt.Println("gllcms", gllcms.CurrentVersion)
		return
	}
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	gllcms.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err = write_outputs(&opts); err != nil {
		return
	}
	if len(inputs) == 0 {
		return
	}
	store := gllcms.NewStore()
	if err = store.Set(opts.settings); err != nil {
		return
	}
	var r runner
	if opts.use_gpu {
		r, err = new_gpu_runner(store)
	} else {
		r = new_cpu_runner(store)
	}
	if err != nil {
		return
	}
	defer r.Close()
	for _, input := range inputs {
		output := opts.output
		if err = process_file(r, input, &output, opts.settings); err != nil {
			return
		}
		fmt.Println(input, "->", output)
	}
	st := r.Stats()
	gllcms.Logger().Info("done", "frames", st.Frames, "rebuilds", st.Rebuilds, "uploads", st.Uploads, "passthrough", st.Passthrough)
}
