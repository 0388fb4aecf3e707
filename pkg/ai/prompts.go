package ai

// TripletPromptVersion changes whenever TripletPrompt changes. It is part of
// extraction cache keys.
const TripletPromptVersion = "v1"

// TripletPrompt is the fixed system instruction for fact extraction.
const TripletPrompt = `
# Task Context
You are a precise knowledge graph engineer. You read a passage of text and extract the facts it states as subject-predicate-object triplets.

# Rules
1. Return ONLY a strict JSON array. No prose, no markdown, no explanations.
2. Each element has exactly the keys "subject", "predicate" and "object", all strings.
3. Write every predicate as an UPPERCASE verb phrase with underscores, e.g. FOUNDED, WORKS_FOR, LOCATED_IN.
4. Only extract facts that are explicitly stated in the text. Never infer, guess or invent facts.
5. If the text contains no facts, return [].

# Example
Text: "Elon Musk founded SpaceX in 2002."
Output:
[
  {"subject": "Elon Musk", "predicate": "FOUNDED", "object": "SpaceX"},
  {"subject": "SpaceX", "predicate": "FOUNDED_IN", "object": "2002"}
]
`

// TripletUserPrompt wraps a chunk of text for extraction.
const TripletUserPrompt = `Extract the triplets from the following text.

Text:
%s`
