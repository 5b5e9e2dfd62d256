// vuln-analyzer scans C and C++ source files for security vulnerabilities
// using a locally served language model.
//
// Each file is split into chunks that fit the model's context, every chunk
// is reviewed by the model, and the findings are deduplicated and printed
// as one report per file.
//
// Usage:
//
//	vuln-analyzer analyze src/*.c                  # text reports on stdout
//	vuln-analyzer analyze -m models/phi-4-Q4_1.gguf -t 512 -j 8 --ctx 4096 main.c
//	vuln-analyzer analyze --backend ollama -m qwen2.5-coder --format sarif --out scan.sarif *.c
//	vuln-analyzer model check                      # verify the model server answers
//	vuln-analyzer config init                      # write a default config file
package main
