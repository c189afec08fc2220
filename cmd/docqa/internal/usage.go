package internal

import (
	"fmt"
	"os"
)

const Version = "0.1.0"

// PrintUsage 向 stderr 输出 docqa 的用法说明。
func PrintUsage() {
	fmt.Fprintf(os.Stderr, `docqa - Ask questions about a document

Version: %s

USAGE:
    docqa [options] [document]

    The document is a UTF-8 text file or a PDF. When omitted, document.path
    from the config file is used (default: document.txt).

OPTIONS:
    -config <path>
        Path to config file (default: ~/.docqa/config/docqa.yaml)

    -k <n>
        Number of chunks retrieved per question (default: retrieval.top_k)

    -init-config
        Write a config template to the config path and exit

    -v, -version
        Show version information

    -h, -help
        Show this help message

ENVIRONMENT:
    GOOGLE_API_KEY
        API key for the default gemini generator. Read from the environment
        or from a .env file in the working directory. The variable name is
        configurable with generator.api_key_env.

EXAMPLES:
    # Ask questions about document.txt in the current directory
    docqa

    # Use a PDF and retrieve five chunks per question
    docqa -k 5 handbook.pdf

    # Create a config template
    docqa -init-config
`, Version)
}
