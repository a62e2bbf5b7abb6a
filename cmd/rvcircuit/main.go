package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circfile"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/compiler"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/config"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/equiv"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/program"
)

func main() {
	// Fabric invariant violations panic; report them and exit non-zero.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "internal error:", r)
			os.Exit(1)
		}
	}()

	rootCmd := &cobra.Command{
		Use:   "rvcircuit",
		Short: "RV32I+M to Boolean-circuit compiler",
	}
	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML file overriding the compile options below")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(
		newCompileCmd(),
		newStatsCmd(),
		newVerifyCircuitCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// fileConfig is the YAML shape --config accepts, field names matching
// the configuration table in spec.md §6.
type fileConfig struct {
	MemoryTier     string `yaml:"memory_tier"`
	Adder          string `yaml:"adder"`
	Dedup          *bool  `yaml:"dedup"`
	Fuse           *bool  `yaml:"fuse"`
	MaxInputBytes  int    `yaml:"max_input_bytes"`
	MaxOutputBytes int    `yaml:"max_output_bytes"`
}

func newCompileCmd() *cobra.Command {
	var (
		inputPath      string
		memoryPath     string
		entryPC        uint32
		memoryTierStr  string
		adderStr       string
		dedup          bool
		fuse           bool
		maxInputBytes  int
		maxOutputBytes int
		outputPath     string
		verbose        bool
		parallel       bool
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a flat RV32I+M instruction stream into a circuit file",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := config.Default()
			if verbose {
				opts.Logger.SetLevel(logrus.DebugLevel)
			}
			if tier, err := config.ParseMemoryTier(memoryTierStr); err == nil {
				opts.MemoryTier = tier
			} else {
				return err
			}
			if adder, err := config.ParseAdder(adderStr); err == nil {
				opts.Adder = adder
			} else {
				return err
			}
			opts.Dedup = dedup
			opts.Fuse = fuse
			opts.MaxInputBytes = maxInputBytes
			opts.MaxOutputBytes = maxOutputBytes

			configPath := viper.GetString("config")
			if configPath != "" {
				if err := applyFileConfig(configPath, &opts); err != nil {
					return err
				}
			}

			raw, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("reading --input: %w", err)
			}
			var memory []byte
			if memoryPath != "" {
				memory, err = os.ReadFile(memoryPath)
				if err != nil {
					return fmt.Errorf("reading --memory: %w", err)
				}
			}

			p, err := program.LoadBinary(raw, entryPC, memory)
			if err != nil {
				return err
			}

			compile := compiler.Compile
			if parallel {
				compile = compiler.CompileScheduled
			}
			res, err := compile(p, opts)
			if err != nil {
				return err
			}

			out, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := circfile.Write(out, res.Circuit); err != nil {
				return err
			}

			fmt.Printf("compiled %d instructions: %d gates, %d input bits, %d output bits\n",
				len(p.Text), res.GatesEmitted, res.Circuit.InputBits(), res.Circuit.OutputBits())
			fmt.Printf("written to %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a flat little-endian 32-bit instruction word stream")
	cmd.MarkFlagRequired("input")
	cmd.Flags().StringVar(&memoryPath, "memory", "", "path to declared initial memory-region bytes (optional; validated against --memory-tier's capacity, not wired into the circuit — see pkg/program.Program.Memory)")
	cmd.Flags().Uint32Var(&entryPC, "entry-pc", 0, "entry PC, must be 4-byte aligned")
	cmd.Flags().StringVar(&memoryTierStr, "memory-tier", "simple", "ultra, simple, or authenticated")
	cmd.Flags().StringVar(&adderStr, "adder", "ripple", "ripple or kogge_stone")
	cmd.Flags().BoolVar(&dedup, "dedup", true, "hash new gates by (kind, left, right) and reuse output wires on collision")
	cmd.Flags().BoolVar(&fuse, "fuse", true, "fuse LUI+ADDI and AUIPC+ADDI pairs into one combined circuit")
	cmd.Flags().IntVar(&maxInputBytes, "max-input-bytes", 10<<20, "precondition budget for the input vector")
	cmd.Flags().IntVar(&maxOutputBytes, "max-output-bytes", 10<<20, "precondition budget for the output vector")
	cmd.Flags().StringVar(&outputPath, "output", "", "output circuit file path")
	cmd.MarkFlagRequired("output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log per-instruction emission at debug level")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "batch and emit independent straight-line instructions concurrently")

	return cmd
}

// applyFileConfig overrides opts with whatever fields a YAML config
// file sets, leaving flag-supplied values in place for anything the
// file omits.
func applyFileConfig(path string, opts *config.Options) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading --config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parsing --config: %w", err)
	}
	if fc.MemoryTier != "" {
		tier, err := config.ParseMemoryTier(fc.MemoryTier)
		if err != nil {
			return err
		}
		opts.MemoryTier = tier
	}
	if fc.Adder != "" {
		adder, err := config.ParseAdder(fc.Adder)
		if err != nil {
			return err
		}
		opts.Adder = adder
	}
	if fc.Dedup != nil {
		opts.Dedup = *fc.Dedup
	}
	if fc.Fuse != nil {
		opts.Fuse = *fc.Fuse
	}
	if fc.MaxInputBytes != 0 {
		opts.MaxInputBytes = fc.MaxInputBytes
	}
	if fc.MaxOutputBytes != 0 {
		opts.MaxOutputBytes = fc.MaxOutputBytes
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [circuit file]",
		Short: "Print the header of a compiled circuit file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			h, _, err := circfile.Read(f)
			if err != nil {
				return err
			}
			fmt.Printf("input bits:  %d\n", h.InputBits)
			fmt.Printf("output bits: %d\n", h.OutputBits)
			fmt.Printf("gates:       %d\n", h.GateCount)
			fmt.Printf("wires:       %d\n", h.NumWires)
			return nil
		},
	}
}

func newVerifyCircuitCmd() *cobra.Command {
	var timeoutStr string
	var sample bool

	cmd := &cobra.Command{
		Use:   "verify-circuit [a.circ] [b.circ]",
		Short: "Check two circuit files for Boolean-function equivalence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, err := time.ParseDuration(timeoutStr)
			if err != nil {
				return fmt.Errorf("invalid --timeout: %w", err)
			}

			a, err := readCircuit(args[0])
			if err != nil {
				return err
			}
			b, err := readCircuit(args[1])
			if err != nil {
				return err
			}

			if sample {
				ok, counterexample := equiv.QuickCheck(a, b, equiv.FixedVectors(a.InputBits()))
				if !ok {
					fmt.Println("not-equivalent (quickcheck)")
					printCounterexample(counterexample)
					os.Exit(1)
				}
			}

			result, cex, err := equiv.Check(a, b, timeout)
			if err != nil {
				return err
			}
			fmt.Println(result)
			if result == equiv.NotEquivalent {
				printCounterexample(cex.Inputs)
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&timeoutStr, "timeout", "30s", "SAT solver wall-clock budget")
	cmd.Flags().BoolVar(&sample, "quickcheck", true, "refute with a few concrete vectors before paying for a SAT call")
	return cmd
}

func readCircuit(path string) (*circuit.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return circfile.LoadCircuit(f)
}

func printCounterexample(inputs []bool) {
	var b strings.Builder
	for i, bit := range inputs {
		if bit {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
		if i%8 == 7 {
			b.WriteByte(' ')
		}
	}
	fmt.Println("counterexample input bits:", b.String())
}
