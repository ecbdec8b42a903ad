// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai defines the embedding capability consumed by pathway.
//
// The ranking engine never computes embeddings itself. It depends on the
// Embedder interface, whose contract is:
//
//   - deterministic: the same text always yields the same vector
//   - comparable: vectors for similar meanings have high cosine similarity
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles
//
// Public constructors in ai/openai return the ai.Embedder interface. Test
// constructors in ai/mock return concrete types so tests can inspect call
// counts and inject behavior.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel("text-embedding-3-small"))
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vectors, err := embedder.EmbedTexts(ctx, []string{"software engineer"})
package ai
