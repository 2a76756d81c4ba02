package registry

import (
	"fmt"
	"strings"
)

func podsPrefix(prefix string) string {
	return fmt.Sprintf("%s/pods/", strings.TrimRight(prefix, "/"))
}

func keyForPod(prefix, podName string) string {
	return podsPrefix(prefix) + podName
}

func podFromKey(prefix, key string) string {
	return strings.TrimPrefix(key, podsPrefix(prefix))
}
