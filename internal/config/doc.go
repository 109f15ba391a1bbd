// Package config provides configuration structures and utilities for sitegist.
// It defines the main options for crawling, scoring, caching, and LLM
// summarization, plus per-site profiles loaded from a YAML file.
package config
