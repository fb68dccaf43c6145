package narrator_test

import (
	"encoding/json"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestRepro9(t *testing.T) {
	body := `{"choices":[{"message":{"content":"{\"overall\":\"O site 95% esta ok. www.example.com\",\"seo\":\"seo ok.\",\"a11y\":\"a11y ok.\",\"content\":\"content ok.\",\"performance\":\"performance ok.\",\"indexacao\":\"indexacao ok.\",\"erros_criticos\":\"sem erros.\"}}}]}`
	var resp openai.ChatCompletionResponse
	err := json.Unmarshal([]byte(body), &resp)
	t.Logf("resp=%+v err=%v", resp, err)
}
