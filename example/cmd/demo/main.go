package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mickamy/gospy"
	"github.com/mickamy/gospy/internal/logging"
)

var errOutOfStock = errors.New("out of stock")

// Inventory is the demo target.
type Inventory struct {
	Owner string
	Items map[string]int
}

func (inv *Inventory) Add(item string, n int) int {
	inv.Items[item] += n
	return inv.Items[item]
}

func (inv *Inventory) Remove(item string, n int) (int, error) {
	if inv.Items[item] < n {
		return inv.Items[item], fmt.Errorf("remove %d %s: %w", n, item, errOutOfStock)
	}
	inv.Items[item] -= n
	return inv.Items[item], nil
}

// Restock tops an item up through the receiver so burrow-deep mode records the nested Add.
func (inv *Inventory) Restock(self gospy.Receiver, item string) (int, error) {
	return gospy.CallAs[int](self, "Add", item, 10)
}

func NewInventory(owner string) *Inventory {
	return &Inventory{Owner: owner, Items: map[string]int{}}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		burrowDeep bool
		logLevel   string
		metrics    bool
	)
	cmd := &cobra.Command{
		Use:          "demo",
		Short:        "Wrap a sample inventory in a gospy proxy and dump what it recorded",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := gospy.Config{}
			if configPath != "" {
				loaded, err := gospy.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("burrow-deep") {
				cfg.BurrowDeep = burrowDeep
			}
			if cfg.Logger == nil {
				l, err := logging.New(logging.Config{Level: logLevel})
				if err != nil {
					return err
				}
				cfg.Logger = l
			}
			defer func(l *zap.Logger) {
				_ = l.Sync()
			}(cfg.Logger)
			if metrics && cfg.Metrics == nil {
				cfg.Metrics = gospy.NewMetrics("demo")
			}
			return run(cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	cmd.Flags().BoolVar(&burrowDeep, "burrow-deep", false, "pass the proxy as receiver to bound operations")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print collected metrics at the end")
	return cmd
}

func run(cfg gospy.Config) error {
	p, err := gospy.New(cfg).Wrap(NewInventory, "demo-user")
	if err != nil {
		return err
	}

	if _, err := p.Call("Add", "apple", 3); err != nil {
		return err
	}
	if _, err := p.Call("Restock", "pear"); err != nil {
		return err
	}
	if err := p.Set("Owner", "someone else"); err != nil {
		return err
	}
	if _, err := p.Call("Remove", "apple", 5); !errors.Is(err, errOutOfStock) {
		return fmt.Errorf("expected out of stock, got %v", err)
	}
	if err := p.FakeReturnValue("Remove", 0); err != nil {
		return err
	}
	if _, err := p.Call("Remove", "apple", 5); err != nil {
		return err
	}

	p.DumpInfo()
	if err := p.ReportLastFailure(); err != nil {
		return err
	}

	if cfg.Metrics != nil {
		families, err := cfg.Metrics.Registry().Gather()
		if err != nil {
			return err
		}
		for _, mf := range families {
			fmt.Printf("%s: %d series\n", mf.GetName(), len(mf.GetMetric()))
		}
	}

	u, err := p.Unwrap()
	if err != nil {
		return err
	}
	inv := u.Target.(*Inventory)
	fmt.Printf("unwrapped inventory of %s: %v\n", inv.Owner, inv.Items)
	return nil
}
