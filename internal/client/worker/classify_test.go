package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Class
	}{
		{"story list", Request{URL: "https://story-api.test/v1/stories"}, ClassAPI},
		{"story detail", Request{URL: "https://story-api.test/v1/stories/story-1"}, ClassAPI},
		{"push subscription", Request{URL: "https://story-api.test/v1/notifications/push"}, ClassAPI},
		{"photo by extension", Request{URL: "https://cdn.test/photos/abc.JPG"}, ClassImage},
		{"photo by destination", Request{URL: "https://cdn.test/photos/abc", Destination: "image"}, ClassImage},
		{"webp", Request{URL: "https://cdn.test/photos/abc.webp"}, ClassImage},
		{"app shell", Request{URL: "https://app.test/index.html"}, ClassStatic},
		{"script", Request{URL: "https://app.test/assets/app.js"}, ClassStatic},
		{"root navigation", Request{URL: "https://app.test/", Navigate: true}, ClassStatic},
		{"transient", Request{URL: "https://app.test/assets/app.js", Transient: true}, ClassBypass},
		{"non-http scheme", Request{URL: "chrome-extension://abc/page.js"}, ClassBypass},
		{"unparsable", Request{URL: "://"}, ClassBypass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.req))
		})
	}
}

func TestRequestKey_MethodDistinguishes(t *testing.T) {
	get := Request{URL: "https://story-api.test/v1/stories"}
	post := Request{URL: "https://story-api.test/v1/stories", Method: "POST"}

	assert.Equal(t, "GET https://story-api.test/v1/stories", get.Key())
	assert.Equal(t, "POST https://story-api.test/v1/stories", post.Key())
	assert.NotEqual(t, get.Key(), post.Key())
}
