package kv

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ValentinKolb/pDict/cmd/util"
	"github.com/ValentinKolb/pDict/lib/dict"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store) error {
				if err := st.set(args[0], args[1]); err != nil {
					return err
				}
				fmt.Println("set successfully")
				return nil
			})
		},
	}
	addCmd = &cobra.Command{
		Use:   "add [key] [value]",
		Short: "Adds a new key, fails if the key already exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store) error {
				if err := st.add(args[0], args[1]); err != nil {
					if errors.Is(err, dict.ErrDuplicateKey) {
						return fmt.Errorf("key %s already exists", args[0])
					}
					return err
				}
				fmt.Println("added successfully")
				return nil
			})
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store) error {
				value, err := st.get(args[0])
				if errors.Is(err, dict.ErrKeyNotFound) {
					fmt.Printf("key=%s, found=false\n", args[0])
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Printf("key=%s, found=true, value=%s\n", args[0], value)
				return nil
			})
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store) error {
				removed, err := st.del(args[0])
				if err != nil {
					return err
				}
				if removed {
					fmt.Println("deleted successfully")
				} else {
					fmt.Printf("key=%s not found, nothing deleted\n", args[0])
				}
				return nil
			})
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store) error {
				loaded, err := st.has(args[0])
				if err != nil {
					return err
				}
				fmt.Printf("key=%s, found=%t\n", args[0], loaded)
				return nil
			})
		},
	}
	countCmd = &cobra.Command{
		Use:   "count",
		Short: "Counts all stored entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store) error {
				n, err := st.count()
				if err != nil {
					return err
				}
				fmt.Printf("count=%d\n", n)
				return nil
			})
		},
	}
	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Lists entries in ascending key order",
		Long:  "Lists entries in ascending key order. The range can be restricted with --from (inclusive) and --to (exclusive); keys are parsed according to the configured key type.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store) error {
				from := viper.GetString("from")
				to := viper.GetString("to")
				limit := viper.GetInt("limit")

				printed := 0
				err := st.scan(from, to, func(key, value string) (bool, error) {
					fmt.Printf("%s\t%s\n", key, value)
					printed++
					return limit <= 0 || printed < limit, nil
				})
				if err != nil {
					return err
				}
				fmt.Printf("(%d entries)\n", printed)
				return nil
			})
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints metadata about the underlying storage engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store) error {
				info, err := st.info()
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			})
		},
	}
)

func init() {
	key := "from"
	scanCmd.Flags().String(key, "", util.WrapString("Lower bound of the scan, inclusive (empty = start of the index)"))
	key = "to"
	scanCmd.Flags().String(key, "", util.WrapString("Upper bound of the scan, exclusive (empty = end of the index)"))
	key = "limit"
	scanCmd.Flags().Int(key, 0, util.WrapString("Stop after this many entries (0 = no limit)"))
}
