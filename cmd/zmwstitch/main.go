// Copyright 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This binary stitches the subreads and scraps of a PacBio movie into one
// polymerase read per ZMW.
//
//	zmwstitch -o movie.zmws.bam gs://bucket/movie.subreads.bam
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/googlegenomics/zmw/internal/bamrecord"
	"github.com/googlegenomics/zmw/internal/frames"
	"github.com/googlegenomics/zmw/internal/output"
	"github.com/googlegenomics/zmw/internal/regiondb"
	"github.com/googlegenomics/zmw/internal/storage"
	"github.com/googlegenomics/zmw/internal/virtual"
	"github.com/googlegenomics/zmw/internal/zmw"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
)

var (
	outputPath = flag.String("o", output.Stdout, "output file; .bam, .fasta or .fastq (optionally .gz), or - for BAM on stdout")
	scraps     = flag.String("scraps", "", "scraps file; defaults to the .scraps.bam next to the subreads, if present")
	regionsDB  = flag.String("regions_db", "", "if set, stores the region table of every ZMW in this SQLite database")
	holes      = flag.String("holes", "", "if set, restricts stitching to a comma-separated list of hole numbers")
	lossless   = flag.Bool("lossless_frames", false, "store IPD and pulse width data in BAM output as 16-bit frame counts instead of CodecV1 codes")

	workers     = flag.Int("workers", 0, "number of ZMWs stitched at once; 0 uses every CPU")
	batchSize   = flag.Int("batch_size", 256, "number of ZMWs read ahead of the writer")
	skipInvalid = flag.Bool("skip_invalid", false, "log and skip ZMWs that cannot be stitched instead of failing")

	public      = flag.Bool("public", false, "read gs:// paths without credentials")
	profileMode = flag.String("profile", "", "write a cpu or mem profile to the working directory")
	logLevel    = flag.String("log_level", "info", "log level")
	logJSON     = flag.Bool("log_json", false, "log in JSON")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <subreads.bam>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid -log_level: %v", err)
	}
	logrus.SetLevel(level)
	if *logJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	os.Exit(stitch(flag.Arg(0)))
}

// stitch stitches the movie at subreadsPath and returns the exit status.  The
// profile and the signal handler are stopped before it returns.
func stitch(subreadsPath string) int {
	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		logrus.Errorf("Invalid -profile %q: must be cpu or mem", *profileMode)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, subreadsPath); err != nil {
		logrus.Errorf("Stitching failed: %v", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, subreadsPath string) error {
	var client storage.Client
	if strings.HasPrefix(subreadsPath, "gs://") || strings.HasPrefix(*scraps, "gs://") {
		newClient := storage.NewDefaultClient
		if *public {
			newClient = storage.NewPublicClient
		}
		c, _, err := newClient(nil)
		if err != nil {
			return err
		}
		client = c
	}

	subreadsData, err := storage.Open(ctx, client, subreadsPath)
	if err != nil {
		return err
	}
	defer subreadsData.Close()
	subreads, err := zmw.OpenBAM(subreadsData)
	if err != nil {
		return fmt.Errorf("opening %s: %w", subreadsPath, err)
	}
	defer subreads.Close()

	scrapsReader, closeScraps, err := openScraps(ctx, client, subreadsPath)
	if err != nil {
		return err
	}
	defer closeScraps()

	header, err := bamrecord.NewHeader(subreads.Header())
	if err != nil {
		return fmt.Errorf("reading header of %s: %v", subreadsPath, err)
	}

	reader := zmw.NewReader(subreads, scrapsReader)
	if *holes != "" {
		whitelist, err := parseHoles(*holes)
		if err != nil {
			return fmt.Errorf("parsing -holes: %v", err)
		}
		reader.Whitelist(whitelist)
	}

	enc := frames.Lossy
	if *lossless {
		enc = frames.Lossless
	}
	w, err := output.Create(*outputPath, subreads.Header(), enc)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *outputPath, err)
	}

	emit := w.Write
	if *regionsDB != "" {
		db, err := regiondb.Open(*regionsDB)
		if err != nil {
			w.Close()
			return err
		}
		defer db.Close()
		emit = func(r *virtual.Record) error {
			if err := db.Insert(ctx, r); err != nil {
				return err
			}
			return w.Write(r)
		}
	}

	pipeline := &zmw.Pipeline{
		Header:      header,
		Workers:     *workers,
		BatchSize:   *batchSize,
		SkipInvalid: *skipInvalid,
		Log:         logrus.StandardLogger(),
	}
	summary, err := pipeline.Run(ctx, reader, emit)
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing %s: %v", *outputPath, err)
	}

	logrus.WithFields(summary.Fields()).Info("Stitched ZMWs")
	return nil
}

// openScraps opens the scraps file named by -scraps, or the one next to the
// subreads file.  It returns a nil reader when there is no scraps file to
// read.
func openScraps(ctx context.Context, client storage.Client, subreadsPath string) (zmw.RecordReader, func(), error) {
	path, explicit := *scraps, *scraps != ""
	if !explicit {
		name, ok := zmw.ScrapsName(subreadsPath)
		if !ok {
			logrus.Warnf("%s is not named like a subreads file; stitching subreads only", subreadsPath)
			return nil, func() {}, nil
		}
		path = name
	}

	data, err := storage.Open(ctx, client, path)
	if errors.Is(err, storage.ErrNotFound) && !explicit {
		logrus.WithField("scraps", path).Warn("No scraps file; stitching subreads only")
		return nil, func() {}, nil
	} else if err != nil {
		return nil, nil, err
	}
	br, err := zmw.OpenBAM(data)
	if err != nil {
		data.Close()
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return br, closeAll(br, data), nil
}

func closeAll(closers ...io.Closer) func() {
	return func() {
		for _, c := range closers {
			c.Close()
		}
	}
}

func parseHoles(s string) ([]int32, error) {
	var holes []int32
	for _, field := range strings.Split(s, ",") {
		n, err := strconv.ParseInt(strings.TrimSpace(field), 10, 32)
		if err != nil {
			return nil, err
		}
		holes = append(holes, int32(n))
	}
	return holes, nil
}
