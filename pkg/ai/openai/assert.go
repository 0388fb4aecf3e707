package openai

import "github.com/sakshi-kadian/aurelius/pkg/ai"

var _ ai.GraphAIClient = (*GraphOpenAIClient)(nil)
var _ ai.BatchEmbedder = (*GraphOpenAIClient)(nil)
