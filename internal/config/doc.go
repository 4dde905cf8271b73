// Package config provides configuration parsing for the mcwire CLI.
//
// The configuration is stored in mcwire.json, found by walking up from the
// working directory. Every field is optional and command-line flags win
// over file values.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": "localhost:8025",
//	    "shutdownTimeout": "10s"
//	  },
//	  "codec": {
//	    "threshold": 256
//	  },
//	  "registry": "./data/registries.json",
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "chat": {
//	    "mode": "plain"
//	  },
//	  "metrics": {
//	    "namespace": "mcwire"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Threshold:", cfg.Threshold())
package config
