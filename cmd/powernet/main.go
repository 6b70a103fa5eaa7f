package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"powernet"
	"powernet/config"
	"powernet/debug"
	"powernet/estimation"
	"powernet/load"
	"powernet/loadflow"
	"powernet/metrics"
	"powernet/server"
	"powernet/types"
)

func main() {
	var (
		estimate   = flag.Bool("estimate", false, "run state estimation after the load flow")
		algorithm  = flag.String("algorithm", "", "estimation algorithm: WLS or LAV")
		synthesize = flag.Float64("synthesize", 0, "replace measurements with ones synthesized from the load flow, using this standard deviation")
		caseFile   = flag.String("case", "", "operating case file applied before solving")
		export     = flag.String("export", "", "write the loaded network as YAML")
		envFile    = flag.String("env", "", ".env file to load")
		serve      = flag.Bool("serve", false, "start the HTTP server")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: powernet [flags] case.yaml\n       powernet -serve\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	var err error
	if *envFile != "" {
		err = config.LoadEnv(*envFile)
	} else {
		err = config.LoadEnv()
	}
	if err != nil {
		log.Println("Note: .env file not found, using environment")
	}
	cfg := config.LoadConfig()
	if *algorithm != "" {
		if cfg.Algorithm, err = types.ParseAlgorithm(*algorithm); err != nil {
			log.Fatal(err)
		}
	}

	if *serve {
		if err = server.New(cfg, metrics.New()).Run(); err != nil {
			log.Fatal(err)
		}
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	p, err := powernet.Load(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	if *caseFile != "" {
		file, err := os.Open(*caseFile)
		if err != nil {
			log.Fatal(err)
		}
		c, err := load.LoadCase(file)
		file.Close()
		if err != nil {
			log.Fatal(err)
		}
		if err = p.Apply(c); err != nil {
			log.Fatal(err)
		}
	}
	if *export != "" {
		if err = p.Export(*export); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Print(p.Summary())

	lfDebug := recorder(cfg)
	var lfOpts []loadflow.Option
	if lfDebug != nil {
		lfOpts = append(lfOpts, loadflow.WithDebug(lfDebug))
	}
	lf, err := p.LoadFlow(cfg.LoadFlow(lfOpts...)...)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nload flow: %s after %d iterations (residual %.3e)\n", lf.Status, lf.Iterations, lf.Residual)
	if err = lf.Err(); err != nil {
		log.Println(err)
	}
	printBuses(p, lf.Vm, lf.Va)
	if len(lf.Flows) > 0 {
		fmt.Printf("\n%-20s %12s %12s %12s %12s\n", "branch", "P from", "Q from", "P loss", "Q loss")
		for _, f := range lf.Flows {
			loss := f.Loss()
			fmt.Printf("%-20s %12.6f %12.6f %12.6f %12.6f\n", f.Name, real(f.From), imag(f.From), real(loss), imag(loss))
		}
	}
	write(cfg, lfDebug, "loadflow")

	if !*estimate {
		return
	}
	if *synthesize > 0 {
		if err = p.Synthesize(*synthesize); err != nil {
			log.Fatal(err)
		}
	}
	seDebug := recorder(cfg)
	var seOpts []estimation.Option
	if seDebug != nil {
		seOpts = append(seOpts, estimation.WithDebug(seDebug))
	}
	se, err := p.Estimate(cfg.Estimation(seOpts...)...)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\n%s state estimation: %s after %d iterations (max correction %.3e, objective %.6g)\n",
		se.Algorithm, se.Status, se.Iterations, se.Residual, se.Objective)
	if err = se.Err(); err != nil {
		log.Println(err)
	}
	printBuses(p, se.Vm, se.Va)
	dvm, dva := p.Network.Estimate.MaxDeviation(&p.State)
	fmt.Printf("max deviation from load flow: |v| %.3e pu, angle %.3e deg\n", dvm, types.Rad2Deg(dva))
	write(cfg, seDebug, "estimation")
}

// printBuses 母线电压表
func printBuses(p *powernet.Powernet, vm, va []float64) {
	fmt.Printf("%-20s %10s %12s\n", "bus", "|v| pu", "angle deg")
	for i, bus := range p.Buses {
		fmt.Printf("%-20s %10.6f %12.6f\n", bus.Label(), vm[i], types.Rad2Deg(va[i]))
	}
}

// recorder 按配置创建迭代记录
func recorder(cfg *config.Config) types.Debug {
	if cfg.Debug == "" {
		return nil
	}
	d, err := debug.New(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	return d
}

// write 迭代记录写入 PlotDir
func write(cfg *config.Config, d types.Debug, name string) {
	if d == nil {
		return
	}
	filename := filepath.Join(cfg.PlotDir, name+"."+cfg.Debug)
	file, err := os.Create(filename)
	if err != nil {
		d.Error(err)
		return
	}
	defer file.Close()
	if err = d.Render(file); err != nil {
		d.Error(err)
		return
	}
	log.Printf("iteration record written to %s", filename)
}
