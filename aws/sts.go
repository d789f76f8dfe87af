package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// CallerIdentity holds the identity the adapter's credentials resolve to.
type CallerIdentity struct {
	Account string
	ARN     string
	UserID  string
}

// VerifyCredentials performs the pre-flight credential check. Any error means
// the credentials are missing, expired or otherwise unusable, and no mutating
// call should be attempted.
func (a *Adapter) VerifyCredentials(ctx context.Context) (*CallerIdentity, error) {
	resp, err := a.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, err
	}
	return &CallerIdentity{
		Account: awssdk.ToString(resp.Account),
		ARN:     awssdk.ToString(resp.Arn),
		UserID:  awssdk.ToString(resp.UserId),
	}, nil
}
