package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banachtech/quantmc/api"
	"github.com/banachtech/quantmc/mc"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
)

const defaultServerAddress = "0.0.0.0:8080"

func main() {
	sweep := flag.Bool("sweep", false, "run an Asian option convergence sweep instead of serving the API")
	flag.Parse()

	if *sweep {
		if err := runSweep(); err != nil {
			fmt.Println(err)
			os.Exit(-1)
		}
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment as-is")
	}

	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = defaultServerAddress
	}

	server := api.NewServer(api.Config{APIKeyHash: os.Getenv("API_KEY_HASH")})
	if err := server.Start(address); err != nil {
		log.Fatal("cannot start server:", err)
	}
}

// runSweep prices the same Asian call at increasing path counts, with and
// without control variates, and prints the standard errors side by side.
func runSweep() error {
	pathCounts := []int{1000, 2000, 5000, 10000, 20000, 50000, 100000}
	bar := progressbar.Default(int64(2 * len(pathCounts)))

	fmt.Printf("%10s %12s %12s %12s %12s %8s\n", "paths", "mean", "se", "cv_mean", "cv_se", "vrf")
	for _, n := range pathCounts {
		spec := mc.AsianSpec{
			Spot:     100,
			Strike:   100,
			Rate:     0.03,
			Maturity: 1,
			Vol:      0.2,
			Obs:      50,
			Paths:    n,
			Sampler:  mc.SamplerConfig{Method: mc.Plain, Antithetic: true, Seed: 123},
			Alpha:    0.05,
		}

		base, err := mc.PriceAsian(spec)
		if err != nil {
			return err
		}
		bar.Add(1)

		spec.UseControlVariate = true
		spec.UseExtraControl = true
		cv, err := mc.PriceAsian(spec)
		if err != nil {
			return err
		}
		bar.Add(1)

		if cv.ControlVariate == nil {
			return fmt.Errorf("control variate report missing for %d paths", n)
		}
		fmt.Printf("%10d %12.5f %12.5f %12.5f %12.5f %8.2f\n",
			n, base.Baseline.Mean, base.Baseline.SE,
			cv.ControlVariate.Adjusted.Mean, cv.ControlVariate.Adjusted.SE,
			cv.ControlVariate.ReductionFactor)
	}
	return nil
}
