package aws

import (
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func convertEc2Tags(ec2Tags []ec2types.Tag) map[string]string {
	tags := make(map[string]string, len(ec2Tags))
	for _, tag := range ec2Tags {
		tags[awssdk.ToString(tag.Key)] = awssdk.ToString(tag.Value)
	}
	return tags
}

func convertS3Tags(s3Tags []s3types.Tag) map[string]string {
	tags := make(map[string]string, len(s3Tags))
	for _, tag := range s3Tags {
		tags[awssdk.ToString(tag.Key)] = awssdk.ToString(tag.Value)
	}
	return tags
}

func ec2Tags(tags map[string]string) []ec2types.Tag {
	result := make([]ec2types.Tag, 0, len(tags))
	for key, value := range tags {
		result = append(result, ec2types.Tag{
			Key:   awssdk.String(key),
			Value: awssdk.String(value),
		})
	}
	return result
}

func ec2TagSpec(resourceType ec2types.ResourceType, tags map[string]string) []ec2types.TagSpecification {
	if len(tags) == 0 {
		return nil
	}
	return []ec2types.TagSpecification{
		{
			ResourceType: resourceType,
			Tags:         ec2Tags(tags),
		},
	}
}

func nameFromTags(tags map[string]string, fallback string) string {
	if name, ok := tags[nameTag]; ok && name != "" {
		return name
	}
	return fallback
}
