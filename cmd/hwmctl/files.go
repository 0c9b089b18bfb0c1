package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/hwm/store"
	"github.com/arthur-debert/hwmstore/incremental"
	"github.com/arthur-debert/hwmstore/types"
)

// loadFileList returns the stored file list of folder, or an empty one
func loadFileList(s store.Store, operation string, folder types.RemoteFolder) (hwm.FileListHWM, error) {
	h, err := hwm.NewFileListHWM(folder)
	if err != nil {
		return hwm.FileListHWM{}, err
	}

	existing, err := s.Get(h.QualifiedName())
	if errors.Is(err, store.ErrNotFound) {
		return h, nil
	}
	if err != nil {
		return hwm.FileListHWM{}, err
	}
	typed, ok := existing.(hwm.FileListHWM)
	if !ok {
		return hwm.FileListHWM{}, NewTypeError(operation, h.QualifiedName(), existing, hwm.KindFileList)
	}
	return typed, nil
}

func parseFolder(operation, folder string) (types.RemoteFolder, error) {
	f, err := types.ParseRemoteFolder(folder)
	if err != nil {
		return types.RemoteFolder{}, NewValidationError(operation, "folder", folder, err, `Use "root@instance", e.g. "/landing@ftp://files.example.com"`)
	}
	return f, nil
}

func (cli *CLI) addFilesCommand() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "add-files --folder <root@instance> <path>...",
		Short: "Record files as handled in a file list hwm",
		Long:  "Record files as handled. Paths are relative to the folder root, or absolute paths under it.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const operation = "add files"

			f, err := parseFolder(operation, folder)
			if err != nil {
				return err
			}

			return cli.withStore(operation, func(s store.Store) error {
				h, err := loadFileList(s, operation, f)
				if err != nil {
					return err
				}
				updated, err := incremental.Record(h, args)
				if err != nil {
					return err
				}

				if updated.Len() != h.Len() {
					if err := s.Save(updated); err != nil {
						return err
					}
				}
				cli.logger.Info("files recorded", "qualified_name", updated.QualifiedName(), "added", updated.Len()-h.Len())
				return cli.render([]hwm.HWM{updated})
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Remote folder as root@instance (required)")
	_ = cmd.MarkFlagRequired("folder")
	return cmd
}

func (cli *CLI) pendingFilesCommand() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "pending-files --folder <root@instance> <path>...",
		Short: "Print the paths not recorded yet, one per line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const operation = "list pending files"

			f, err := parseFolder(operation, folder)
			if err != nil {
				return err
			}

			return cli.withStore(operation, func(s store.Store) error {
				h, err := loadFileList(s, operation, f)
				if err != nil {
					return err
				}
				for _, p := range incremental.NewFiles(h, args) {
					fmt.Fprintln(cli.out, p)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Remote folder as root@instance (required)")
	_ = cmd.MarkFlagRequired("folder")
	return cmd
}
