package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/swdee/go-drpai"
	"github.com/swdee/go-drpai/cvmat"
	"github.com/swdee/go-drpai/postprocess"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	classes := flag.Int("c", 80, "Number of object classes the Model was trained with")
	gridsStr := flag.String("g", "80,40,20", "Comma separated grid sizes of each output scale, largest first")
	height := flag.Int("height", 640, "Model input image height in pixels")
	regMax := flag.Int("r", 16, "Number of distribution bins per box edge")
	sigmoid := flag.Bool("sigmoid", false, "Apply sigmoid to the class scores")
	expectation := flag.Bool("expectation", false, "Reduce the regression bins by softmax expectation")
	multi := flag.Bool("multi", true, "Decode each scale on its own goroutine")
	labelFile := flag.String("l", "", "Optional label file to check the class count against")
	platform := flag.String("p", "", "Pin to the cores of the DRP-AI platform [rzv2h|rzv2l|rzv2m|rzv2ma]")
	dumpDir := flag.String("d", "", "Directory of raw little endian float32 output dumps named reg<N>.bin and cls<N>.bin, random data is used when not set")
	iterations := flag.Int("i", 100, "Number of frames to process")
	poolSize := flag.Int("s", 1, "Size of DFL processor pool")
	threshold := flag.Float64("t", 0.5, "Class score threshold for counting candidates")
	verbose := flag.Bool("v", false, "Enable debug logging of the post processor")

	flag.Parse()

	logger := zap.NewNop()

	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()

		if err != nil {
			log.Fatalf("Error creating logger: %v\n", err)
		}

		defer logger.Sync()
	}

	if *platform != "" {
		if err := drpai.SetCPUAffinityByPlatform(*platform); err != nil {
			log.Fatalf("Failed to set CPU Affinity: %v\n", err)
		}
	}

	grids, err := parseGrids(*gridsStr)

	if err != nil {
		log.Fatalf("Invalid grid sizes: %v\n", err)
	}

	params := postprocess.DFLParams{
		ObjectClassNum:   *classes,
		Grids:            grids,
		ModelInputHeight: *height,
		RegMax:           *regMax,
		Activation:       postprocess.ActivationPassthrough,
		Reduction:        postprocess.ReductionReduced,
		MultiThread:      *multi,
	}

	if *sigmoid {
		params.Activation = postprocess.ActivationSigmoid
	}

	if *expectation {
		params.Reduction = postprocess.ReductionExpectation
	}

	var labels []string

	if *labelFile != "" {
		labels, err = drpai.LoadLabels(*labelFile)

		if err != nil {
			log.Fatalf("Error loading labels: %v\n", err)
		}

		if err := params.CheckLabels(labels); err != nil {
			log.Fatalf("Labels do not match model: %v\n", err)
		}
	}

	// processors in the pool share one scratch arena
	pool, err := postprocess.NewPool(*poolSize, params,
		postprocess.WithLogger(logger), postprocess.WithArena(postprocess.NewArena()))

	if err != nil {
		log.Fatalf("Error creating DFL pool: %v\n", err)
	}

	defer pool.Close()

	proc := pool.Get()
	proc.Query(os.Stdout)
	pool.Return(proc)

	var in postprocess.Inputs

	if *dumpDir != "" {
		in, err = loadDumps(*dumpDir, params)

		if err != nil {
			log.Fatalf("Error loading output dumps: %v\n", err)
		}
	} else {
		in = randomInputs(params)
	}

	timings := make([]float64, *iterations)
	results := make([]*postprocess.Detections, *iterations)

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *iterations; i++ {

		// pool.Get() blocks if no processors are available in the pool
		proc := pool.Get()
		wg.Add(1)

		go func(i int, proc *postprocess.DFL) {
			defer wg.Done()
			defer pool.Return(proc)

			frameStart := time.Now()
			res, err := proc.Process(in)
			timings[i] = float64(time.Since(frameStart).Microseconds())

			if err != nil {
				log.Printf("Frame %d failed: %v\n", i, err)
				return
			}

			results[i] = res
		}(i, proc)
	}

	wg.Wait()

	mean, std := stat.MeanStdDev(timings, nil)

	log.Printf("Processed %d frames in %s, per frame mean=%.1fus std=%.1fus\n",
		*iterations, time.Since(start).String(), mean, std)

	if *iterations == 0 || results[0] == nil {
		return
	}

	if err := reportCandidates(results[0], labels, float32(*threshold)); err != nil {
		log.Fatalf("Error reporting candidates: %v\n", err)
	}
}

// parseGrids parses the comma separated grid sizes
func parseGrids(s string) ([]int, error) {

	var grids []int

	for _, field := range strings.Split(s, ",") {

		field = strings.TrimSpace(field)

		if field == "" {
			continue
		}

		g, err := strconv.Atoi(field)

		if err != nil {
			return nil, errors.Wrapf(err, "invalid grid size %q", field)
		}

		grids = append(grids, g)
	}

	return grids, nil
}

// randomInputs fills one frame of raw tensors with random values
func randomInputs(p postprocess.DFLParams) postprocess.Inputs {

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	in := postprocess.Inputs{}

	for i := range p.Grids {
		reg := make([]float32, p.RegressionSize(i))

		for j := range reg {
			reg[j] = rng.Float32() * 4
		}

		cls := make([]float32, p.ClassSize(i))

		for j := range cls {
			cls[j] = rng.Float32()
		}

		in.Regression = append(in.Regression, reg)
		in.Classification = append(in.Classification, cls)
	}

	return in
}

// loadDumps reads the raw output tensors of each scale from dir
func loadDumps(dir string, p postprocess.DFLParams) (postprocess.Inputs, error) {

	in := postprocess.Inputs{}

	for i := range p.Grids {

		reg, err := readFloat32File(filepath.Join(dir, fmt.Sprintf("reg%d.bin", i)), p.RegressionSize(i))

		if err != nil {
			return in, err
		}

		cls, err := readFloat32File(filepath.Join(dir, fmt.Sprintf("cls%d.bin", i)), p.ClassSize(i))

		if err != nil {
			return in, err
		}

		in.Regression = append(in.Regression, reg)
		in.Classification = append(in.Classification, cls)
	}

	return in, nil
}

// readFloat32File reads exactly size little endian float32 values
func readFloat32File(file string, size int) ([]float32, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, errors.Wrap(err, "error opening output dump")
	}

	defer f.Close()

	buf := make([]float32, size)

	if err := binary.Read(f, binary.LittleEndian, buf); err != nil {
		return nil, errors.Wrapf(err, "error reading %d values from %s", size, file)
	}

	return buf, nil
}

// reportCandidates prints the grid points whose best class score exceeds the
// threshold, using an OpenCV view with one row per grid point
func reportCandidates(det *postprocess.Detections, labels []string, threshold float32) error {

	mat, err := cvmat.ToMatTransposed(det)

	if err != nil {
		return err
	}

	defer mat.Close()

	count := 0

	for k := 0; k < mat.Rows(); k++ {

		scores := mat.Region(image.Rect(postprocess.NumEdges, k, postprocess.NumEdges+det.NumClasses(), k+1))
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(scores)
		scores.Close()

		if maxVal < threshold {
			continue
		}

		count++

		if count > 10 {
			continue
		}

		label := strconv.Itoa(maxLoc.X)

		if maxLoc.X < len(labels) {
			label = labels[maxLoc.X]
		}

		log.Printf("point %d: %s %.3f, ltrb=(%.1f, %.1f, %.1f, %.1f)\n", k, label, maxVal,
			mat.GetFloatAt(k, postprocess.EdgeLeft), mat.GetFloatAt(k, postprocess.EdgeTop),
			mat.GetFloatAt(k, postprocess.EdgeRight), mat.GetFloatAt(k, postprocess.EdgeBottom))
	}

	log.Printf("%d of %d grid points above threshold %.2f\n", count, mat.Rows(), threshold)

	return nil
}
