package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/workstation-tools/internal/application/upload"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/config"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/domain"
	s3infra "github.com/workstation-tools/internal/infrastructure/s3"
	"github.com/workstation-tools/internal/prompt"
)

func main() {
	cli.LoadEnv()
	cfg := config.Load()
	v := viper.New()

	root := &cobra.Command{
		Use:   "s3upload [file]",
		Short: "Upload a file to a public S3 bucket",
		Example: `  s3upload mypic.jpg                               # Upload a picture
  s3upload data.csv --name saved-data-for-bob.csv  # Upload a .csv, changing the name`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.InitConfig(v, "s3upload")
			console.Setup(v.GetBool("verbose"))

			file, err := upload.FileArg(v.GetString("file"), args)
			if err != nil {
				return err
			}
			name := v.GetString("name")
			if name == "" {
				name = v.GetString("upload")
			}

			a := cfg.UploadAWS()
			a.Profile, a.Region = v.GetString("profile"), v.GetString("region")
			console.Header("AWS Configuration")
			console.Info("Using profile %s in region %s", console.Bold(a.Profile), console.Bold(a.Region))

			client, err := s3infra.NewClient(cmd.Context(), a)
			if err != nil {
				return err
			}
			svc := upload.NewService(s3infra.NewStore(client, v.GetString("bucket")), prompt.Stdio())
			res, err := svc.Upload(cmd.Context(), upload.Options{
				File:   file,
				Name:   name,
				Prompt: v.GetBool("prompt"),
				Yes:    v.GetBool("yes"),
			})
			if errors.Is(err, domain.ErrAborted) {
				console.Warn("Upload cancelled")
				return nil
			}
			if err != nil {
				return err
			}

			console.Header("Upload Complete")
			console.Success("File uploaded successfully to %s", console.Bold(v.GetString("bucket")))
			console.Header("Access URLs")
			for _, u := range res.URLs {
				console.Println("%s%s", console.Muted("→ "), u)
			}
			fmt.Fprintln(console.Out())
			return nil
		},
	}

	fs := root.Flags()
	fs.String("file", "", "File to upload")
	fs.String("name", "", "Resulting name (defaults to the file's basename)")
	fs.String("upload", "", "Same as --name")
	fs.String("bucket", cfg.UploadBucket, "Bucket to upload to")
	fs.Bool("prompt", false, "Prompt for upload name")
	fs.String("profile", cfg.UploadProfile, "AWS profile to use for authentication")
	fs.String("region", cfg.UploadRegion, "AWS region for the S3 bucket")
	fs.BoolP("yes", "y", false, "Automatically answer yes to prompts")
	fs.BoolP("verbose", "v", false, "Verbose output")
	cli.BindFlags(v, fs)

	cli.Execute(root)
}
