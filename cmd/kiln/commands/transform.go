package commands

import (
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newTransformCmd() *cobra.Command {
	var dev bool

	cmd := &cobra.Command{
		Use:   "transform <file>",
		Short: "Compile one file and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			root, err := os.Getwd()
			if err != nil {
				return zerr.Wrap(err, "failed to get working directory")
			}
			opts, err := c.components.ConfigLoader.Load(root)
			if err != nil {
				return err
			}

			command := domain.CommandBuild
			if dev {
				command = domain.CommandServe
			}
			plugin := c.components.NewPlugin(opts)
			if err := plugin.ConfigResolved(ctx, domain.HostConfig{Command: command, Root: root}); err != nil {
				return err
			}

			path := absPath(root, args[0])
			data, err := os.ReadFile(path)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "failed to read source"), "path", path)
			}

			out, err := plugin.Transform(ctx, path, string(data), domain.HintNone)
			if err != nil {
				return zerr.With(err, "path", path)
			}

			code := string(data)
			if out == nil {
				c.components.Logger.Warn(args[0] + " is not handled by kiln, printing it unchanged")
			} else {
				code = out.Code
				if out.Map != nil {
					code += "//# sourceMappingURL=" + out.Map.ToURL() + "\n"
				}
			}

			_, err = cmd.OutOrStdout().Write([]byte(code))
			return err
		},
	}

	cmd.Flags().BoolVar(&dev, "dev", false, "Transform for development with fast refresh")

	return cmd
}
