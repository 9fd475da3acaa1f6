package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"tvdenoise/internal/logger"
	"tvdenoise/internal/models"
	"tvdenoise/pkg/config"
	"tvdenoise/pkg/denoise"
	"tvdenoise/pkg/imageio"
	"tvdenoise/pkg/noise"
	"tvdenoise/pkg/tvreg"
)

func printHelp() {
	fmt.Println("Total variation regularized image denoising")
	fmt.Println()
	fmt.Println("Syntax: tvdenoise [options] <noisy> <denoised>")
	fmt.Println()
	fmt.Println("where <noisy> and <denoised> are PNG, JPEG, BMP, or TIFF images.")
	fmt.Println()
	fmt.Println("Either lambda (the fidelity strength) or sigma (the noise standard")
	fmt.Println("deviation) should be specified. If sigma is specified, lambda is")
	fmt.Println("selected automatically by the discrepancy principle.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -n <model>          Noise model, where <model> is")
	fmt.Println("                      gaussian  Additive white Gaussian noise")
	fmt.Println("                      laplace   Laplace noise")
	fmt.Println("                      poisson   Poisson noise")
	fmt.Println("  -n <model>:<sigma>  Specify sigma, the noise standard deviation,")
	fmt.Println("                      on the display scale (0 to 255)")
	fmt.Println("  -l <number>         Specify lambda, the fidelity strength")
	fmt.Println("  -estimate           Estimate sigma from the noisy image")
	fmt.Println("  -q <number>         Quality for saving JPEG images (1 to 100)")
	fmt.Println("  -config <path>      Load solver settings from a YAML file")
	fmt.Println("  -verbose            Enable debug logging")
	fmt.Println()
	fmt.Println("Example:")
	fmt.Println("  tvdenoise -n laplace:10 noisy.png denoised.png")
}

func main() {
	// Help and the bare invocation print usage and exit cleanly.
	for _, arg := range os.Args[1:] {
		if arg == "-h" || arg == "-help" || arg == "--help" {
			printHelp()
			return
		}
	}
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	modelSpec := flag.String("n", "gaussian", "Noise model, optionally with sigma as model:sigma")
	lambda := flag.Float64("l", 0, "Fidelity strength lambda (alternative to sigma)")
	estimate := flag.Bool("estimate", false, "Estimate sigma from the noisy image")
	quality := flag.Int("q", 0, "JPEG output quality (1 to 100)")
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Usage = printHelp
	flag.Parse()

	log := logger.NewConsole(*verbose)

	if flag.NArg() != 2 {
		printHelp()
		os.Exit(1)
	}
	inputFile := flag.Arg(0)
	outputFile := flag.Arg(1)

	model, sigma, err := noise.ParseModelSpec(*modelSpec)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid noise model")
	}
	if *lambda < 0 {
		log.Fatal().Msg("lambda must be positive")
	}
	if sigma > 0 && *lambda > 0 {
		log.Fatal().Msg("specify either sigma or lambda, not both")
	}
	if sigma <= 0 && *lambda <= 0 && !*estimate {
		log.Fatal().Msg("either sigma or lambda must be specified")
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}
	}
	if cfg.Output.Verbose && !*verbose {
		log = logger.NewConsole(true)
	}
	jpegQuality := cfg.Output.JpegQuality
	if *quality != 0 {
		if *quality < 1 || *quality > 100 {
			log.Fatal().Msg("JPEG quality must be between 1 and 100")
		}
		jpegQuality = *quality
	}

	noisy, err := imageio.ReadImage(inputFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read input image")
	}
	log.Info().
		Str("input", inputFile).
		Int("width", noisy.Width).
		Int("height", noisy.Height).
		Int("channels", noisy.Channels).
		Msg("loaded noisy image")

	if sigma <= 0 && *lambda <= 0 {
		sigma, err = noise.EstimateSigma(noisy)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to estimate noise level")
		}
		log.Info().Float64("sigma", noise.DisplayScale*sigma).Msg("estimated noise standard deviation")
	}

	params := &denoise.Params{
		Model:         model,
		Sigma:         sigma,
		Lambda:        *lambda,
		TuneRounds:    cfg.Solver.TuneRounds,
		CoarseTol:     cfg.Solver.CoarseTol,
		CoarseMaxIter: cfg.Solver.CoarseMaxIterations,
		FinalTol:      cfg.Solver.FinalTol,
		FinalMaxIter:  cfg.Solver.FinalMaxIterations,
		Progress:      os.Stdout,
		Log:           log,
	}

	denoised, err := models.NewImage(noisy.Width, noisy.Height, noisy.Channels)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to allocate working image")
	}

	denoiser := denoise.NewDenoiser(params, tvreg.NewSolver())
	startTime := time.Now()
	if err := denoiser.Denoise(denoised, noisy); err != nil {
		log.Fatal().Err(err).Msg("denoising failed")
	}
	log.Info().Dur("elapsed", time.Since(startTime)).Msg("denoising finished")

	if err := imageio.WriteImage(denoised, outputFile, jpegQuality); err != nil {
		log.Fatal().Err(err).Msg("failed to write output image")
	}
	log.Info().Str("output", outputFile).Msg("wrote denoised image")
}
