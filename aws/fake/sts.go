package fake

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type STSOutputs struct {
	GetCallerIdentity *APIResponse
}

type STSClient struct {
	Outputs STSOutputs
}

func (m *STSClient) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	out, ok := m.Outputs.GetCallerIdentity.response.(*sts.GetCallerIdentityOutput)
	if !ok {
		return nil, m.Outputs.GetCallerIdentity.err
	}
	return out, m.Outputs.GetCallerIdentity.err
}
