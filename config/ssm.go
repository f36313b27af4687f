package config

import (
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// LoadSSMParameters copies every parameter stored under parameterPath into
// config, keyed by the last path segment. Values already present in config
// are left alone so the environment always wins.
func LoadSSMParameters(ctx context.Context, config map[string]string, parameterPath string) (int, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return 0, err
	}
	return overlayParameters(ctx, ssm.NewFromConfig(awsCfg), config, parameterPath)
}

func overlayParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, config map[string]string, parameterPath string) (int, error) {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(parameterPath),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	added := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return added, err
		}
		for _, p := range page.Parameters {
			key := strings.ToUpper(path.Base(aws.ToString(p.Name)))
			if _, exists := config[key]; exists {
				continue
			}
			config[key] = aws.ToString(p.Value)
			added++
		}
	}
	return added, nil
}
