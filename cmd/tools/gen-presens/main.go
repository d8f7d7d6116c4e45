// Command gen-presens generates sample PreSens instrument logs for
// exercising the cleaning pipeline.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var header = []string{
	"Date (DD/MM/YY)",
	"Time (HH:MM:SS)",
	"Logtime (Min)",
	"Oxygen (%airsatur.)",
	"Temp (°C)",
	"Phase (°)",
	"Amp",
}

func main() {
	outDir := flag.String("o", ".", "output folder")
	files := flag.Int("files", 3, "number of log files")
	samples := flag.Int("n", 120, "samples per file")
	interval := flag.Duration("interval", 15*time.Second, "time between samples")
	preamble := flag.Int("preamble", 57, "instrument preamble lines before the header")
	sep := flag.String("sep", ";", "field separator")
	seed := flag.Int64("seed", 0, "random seed (0 uses the current time)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output folder: %v", err)
	}

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	for i := 0; i < *files; i++ {
		name := fmt.Sprintf("oxygen_run%02d_ch%d.txt", i+1, rng.Intn(4)+1)
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, []byte(render(rng, start, *samples, *interval, *preamble, *sep)), 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("✓ Created: %s", path)
		start = start.Add(time.Duration(*samples) * *interval)
	}
}

// render produces one instrument file: preamble chatter, the vendor
// header, then samples with a slow oxygen decline plus sensor noise.
func render(rng *rand.Rand, start time.Time, samples int, interval time.Duration, preamble int, sep string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PreSens Precision Sensing GmbH%s", "\n")
	for i := 1; i < preamble; i++ {
		fmt.Fprintf(&b, "Parameter line %d: value=%d\n", i, rng.Intn(1000))
	}
	b.WriteString(strings.Join(header, sep))
	b.WriteString("\n")

	slope := -(0.01 + rng.Float64()*0.04) // air saturation lost per sample
	temp := 12 + rng.Float64()*4
	for i := 0; i < samples; i++ {
		ts := start.Add(time.Duration(i) * interval)
		oxygen := 100 + slope*float64(i) + rng.NormFloat64()*0.05
		fields := []string{
			ts.Format("02/01/06"),
			ts.Format("15:04:05"),
			fmt.Sprintf("%.3f", ts.Sub(start).Minutes()),
			fmt.Sprintf("%.2f", oxygen),
			fmt.Sprintf("%.2f", temp+rng.NormFloat64()*0.02),
			fmt.Sprintf("%.3f", 25+rng.Float64()),
			fmt.Sprintf("%d", 8000+rng.Intn(500)),
		}
		b.WriteString(strings.Join(fields, sep))
		b.WriteString("\n")
	}
	return b.String()
}
